package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary 注册新用户
// @Description 使用用户名、邮箱和密码注册，新用户为 student 角色
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名或邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

// Login godoc
// @Summary 用户登录
// @Description username 字段可填写用户名或邮箱，返回 access 与 refresh 令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "登录凭证"
// @Success 200 {object} util.Response{data=service.TokenPair} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tokens, err := c.AuthService.Login(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, tokens)
}

// Refresh godoc
// @Summary 刷新访问令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RefreshRequest true "refresh 令牌"
// @Success 200 {object} util.Response{data=object} "新的 access 令牌"
// @Failure 401 {object} util.Response "令牌无效或已过期"
// @Router /api/auth/token/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	var req service.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	access, err := c.AuthService.Refresh(req.Refresh)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"access": access})
}
