package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// List godoc
// @Summary 课程列表
// @Description 可按分类与难度过滤，附带课时数量
// @Tags 课程
// @Produce  json
// @Param   category query string false "分类"
// @Param   difficulty query string false "难度" Enums(beginner, intermediate, advanced)
// @Success 200 {object} util.Response{data=[]service.CourseListItem} "成功"
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	courses, err := c.CourseService.List(ctx.Query("category"), ctx.Query("difficulty"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// Detail godoc
// @Summary 课程详情
// @Description 包含课时、试卷 ID 和总 XP；登录用户额外返回 user_status
// @Tags 课程
// @Produce  json
// @Param   slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.CourseDetail} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{slug} [get]
func (c *CourseController) Detail(ctx *gin.Context) {
	detail, err := c.CourseService.Detail(ctx.Param("slug"), currentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// Completers godoc
// @Summary 课程通过者
// @Description 按首次通过时间排序的用户列表
// @Tags 课程
// @Produce  json
// @Param   slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=[]model.UserSummary} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{slug}/completers [get]
func (c *CourseController) Completers(ctx *gin.Context) {
	users, err := c.CourseService.Completers(ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// Lesson godoc
// @Summary 课时详情
// @Description 返回同一课程内的上一课时与下一课时 ID
// @Tags 课程
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "课时ID"
// @Success 200 {object} util.Response{data=service.LessonDetail} "成功"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/courses/lessons/{id} [get]
func (c *CourseController) Lesson(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	lesson, err := c.CourseService.Lesson(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// ListCourses godoc
// @Summary 课程管理列表
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Course} "成功"
// @Failure 403 {object} util.Response "没有权限"
// @Router /api/courses/admin/manage [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCourses()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// CreateCourse godoc
// @Summary 创建课程
// @Description slug 为空时根据标题生成，重复时追加数字后缀
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/courses/admin/manage [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.CreateCourse(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// GetCourse godoc
// @Summary 获取课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/admin/manage/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.GetCourse(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/admin/manage/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.UpdateCourse(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Description 同时删除课时与试卷
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 204 "删除成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/admin/manage/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteCourse(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// ListLessons godoc
// @Summary 课程的课时列表
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Lesson} "成功"
// @Router /api/courses/admin/manage/{id}/lessons [get]
func (c *CourseController) ListLessons(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	lessons, err := c.CourseService.ListLessons(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// CreateLesson godoc
// @Summary 创建课时
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   body body service.LessonRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson} "创建成功"
// @Router /api/courses/admin/manage/{id}/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.CreateLesson(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// GetLesson godoc
// @Summary 获取课时
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Router /api/courses/admin/manage/lessons/{id} [get]
func (c *CourseController) GetLesson(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	lesson, err := c.CourseService.GetLesson(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Tags 课程管理
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id path int true "课时ID"
// @Param   body body service.LessonRequest true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Router /api/courses/admin/manage/lessons/{id} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.UpdateLesson(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Tags 课程管理
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Success 204 "删除成功"
// @Router /api/courses/admin/manage/lessons/{id} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteLesson(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
