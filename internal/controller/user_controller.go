package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService  *service.UserService
	StatsService *service.StatsService
}

func NewUserController(userService *service.UserService, statsService *service.StatsService) *UserController {
	return &UserController{
		UserService:  userService,
		StatsService: statsService,
	}
}

// Me godoc
// @Summary 获取当前用户资料
// @Tags 用户
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/auth/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	user, err := c.UserService.Me(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateMe godoc
// @Summary 更新当前用户资料
// @Description 仅可修改 email、avatar、bio，积分与名次等字段只读
// @Tags 用户
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/auth/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateMe(ctx.Request.Context(), currentUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// Stats godoc
// @Summary 个人学习统计
// @Description 总积分、名次、等级、参加考试次数、学习时长及最近 7 天积分曲线
// @Tags 用户
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=service.DashboardStats} "成功"
// @Router /api/auth/stats [get]
func (c *UserController) Stats(ctx *gin.Context) {
	stats, err := c.StatsService.Dashboard(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Profile godoc
// @Summary 查看用户公开资料
// @Tags 用户
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=service.PublicProfile} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/auth/profile/{id} [get]
func (c *UserController) Profile(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.UserService.PublicProfile(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// ListUsers godoc
// @Summary 用户列表（管理端）
// @Tags 管理
// @Security ApiKeyAuth
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   search query string false "按用户名或邮箱搜索"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 403 {object} util.Response "没有权限"
// @Router /api/auth/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page := util.QueryInt(ctx, "page", 1)
	limit := util.QueryInt(ctx, "limit", 20)

	result, err := c.UserService.List(page, limit, ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ToggleStaff godoc
// @Summary 切换用户 staff 身份
// @Description 仅超级管理员可用
// @Tags 管理
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 403 {object} util.Response "没有权限"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/auth/admin/users/{id}/toggle-staff [post]
func (c *UserController) ToggleStaff(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	user, err := c.UserService.ToggleStaff(claims != nil && claims.IsSuperuser, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
