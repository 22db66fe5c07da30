package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService    *service.ExamService
	AttemptService *service.AttemptService
}

func NewExamController(examService *service.ExamService, attemptService *service.AttemptService) *ExamController {
	return &ExamController{
		ExamService:    examService,
		AttemptService: attemptService,
	}
}

// Get godoc
// @Summary 获取试卷
// @Description 返回题目与选项，不包含正确答案
// @Tags 考试
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "试卷ID"
// @Success 200 {object} util.Response{data=service.ExamView} "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/exams/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.ExamService.Find(id, isStaff(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, service.NewExamView(exam))
}

// Submit godoc
// @Summary 提交答案
// @Description answers 的键为题目 ID，值为所选选项 ID；通过后获得的积分计入总积分
// @Tags 考试
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id path int true "试卷ID"
// @Param   body body service.SubmitRequest true "答案"
// @Success 201 {object} util.Response{data=service.AttemptView} "判分结果"
// @Failure 400 {object} util.Response "答案不合法"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/exams/{id}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.Submit(ctx.Request.Context(), currentUserID(ctx), id, isStaff(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, service.NewAttemptView(attempt))
}

// List godoc
// @Summary 试卷列表（管理端）
// @Tags 试卷管理
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Exam} "成功"
// @Router /api/exams/admin [get]
func (c *ExamController) List(ctx *gin.Context) {
	exams, err := c.ExamService.List()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// Create godoc
// @Summary 创建试卷
// @Description 每门课程只能有一份试卷，每道题必须恰好有一个正确选项
// @Tags 试卷管理
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body body service.ExamRequest true "试卷"
// @Success 201 {object} util.Response{data=model.Exam} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "该课程已有试卷"
// @Router /api/exams/admin [post]
func (c *ExamController) Create(ctx *gin.Context) {
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.Create(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// AdminGet godoc
// @Summary 获取试卷（含答案）
// @Tags 试卷管理
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "试卷ID"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Router /api/exams/admin/{id} [get]
func (c *ExamController) AdminGet(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.ExamService.Find(id, true)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// Update godoc
// @Summary 更新试卷
// @Description 提供 questions 时整体替换题目与选项
// @Tags 试卷管理
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id path int true "试卷ID"
// @Param   body body service.ExamRequest true "试卷"
// @Success 200 {object} util.Response{data=model.Exam} "成功"
// @Router /api/exams/admin/{id} [put]
func (c *ExamController) Update(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.Update(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// Delete godoc
// @Summary 删除试卷
// @Tags 试卷管理
// @Security ApiKeyAuth
// @Param   id path int true "试卷ID"
// @Success 204 "删除成功"
// @Router /api/exams/admin/{id} [delete]
func (c *ExamController) Delete(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ExamService.Delete(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
