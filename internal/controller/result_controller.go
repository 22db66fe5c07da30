package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	AttemptService     *service.AttemptService
	CertificateService *service.CertificateService
}

func NewResultController(attemptService *service.AttemptService, certificateService *service.CertificateService) *ResultController {
	return &ResultController{
		AttemptService:     attemptService,
		CertificateService: certificateService,
	}
}

// AttemptDetail 答题记录及证书的点赞、评论计数
type AttemptDetail struct {
	service.AttemptView
	service.CertificateSocial
}

// Attempt godoc
// @Summary 答题记录详情
// @Description 通过的记录即证书，公开可见；未通过的记录仅本人和管理员可见
// @Tags 成绩
// @Produce  json
// @Param   id path int true "答题记录ID"
// @Success 200 {object} util.Response{data=controller.AttemptDetail} "成功"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/results/attempts/{id} [get]
func (c *ResultController) Attempt(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	viewerID := currentUserID(ctx)
	attempt, err := c.AttemptService.Get(id, viewerID, isStaff(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	social, err := c.CertificateService.Social(attempt.ID, viewerID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, AttemptDetail{
		AttemptView:       service.NewAttemptView(attempt),
		CertificateSocial: *social,
	})
}

// History godoc
// @Summary 我的答题记录
// @Tags 成绩
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.AttemptView} "成功"
// @Router /api/results/history [get]
func (c *ResultController) History(ctx *gin.Context) {
	history, err := c.AttemptService.History(currentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// Comments godoc
// @Summary 证书评论列表
// @Tags 成绩
// @Produce  json
// @Param   id path int true "答题记录ID"
// @Success 200 {object} util.Response{data=[]service.CommentView} "成功"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/results/attempts/{id}/comments [get]
func (c *ResultController) Comments(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	comments, err := c.CertificateService.ListComments(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, comments)
}

// AddComment godoc
// @Summary 评论证书
// @Tags 成绩
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id path int true "答题记录ID"
// @Param   body body service.CommentRequest true "评论内容"
// @Success 201 {object} util.Response{data=service.CommentView} "创建成功"
// @Failure 400 {object} util.Response "评论内容不合法"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/results/attempts/{id}/comments [post]
func (c *ResultController) AddComment(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req service.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comment, err := c.CertificateService.AddComment(currentUserID(ctx), id, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// ToggleLike godoc
// @Summary 点赞或取消点赞证书
// @Tags 成绩
// @Security ApiKeyAuth
// @Produce  json
// @Param   id path int true "答题记录ID"
// @Success 200 {object} util.Response{data=service.LikeResult} "成功"
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/results/attempts/{id}/like [post]
func (c *ResultController) ToggleLike(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.CertificateService.ToggleLike(currentUserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
