package controller

import (
	"fmt"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	StatsService  *service.StatsService
	ExportService *service.ExportService
	RankService   *service.RankService
}

func NewAdminController(stats *service.StatsService, export *service.ExportService, rank *service.RankService) *AdminController {
	return &AdminController{
		StatsService:  stats,
		ExportService: export,
		RankService:   rank,
	}
}

// Overview godoc
// @Summary 平台概览
// @Description 课程、试卷、用户、答题总数以及最近 30 天通过率
// @Tags 管理
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=service.Overview} "成功"
// @Failure 403 {object} util.Response "没有权限"
// @Router /api/admin/overview [get]
func (c *AdminController) Overview(ctx *gin.Context) {
	overview, err := c.StatsService.Overview()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// ExportAttempts godoc
// @Summary 导出答题记录
// @Description 以 xlsx 格式流式导出全部答题记录
// @Tags 管理
// @Security ApiKeyAuth
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "xlsx 文件"
// @Router /api/admin/attempts/export [get]
func (c *AdminController) ExportAttempts(ctx *gin.Context) {
	filename := fmt.Sprintf("attempts-%s.xlsx", time.Now().Format("20060102"))
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := c.ExportService.WriteAttempts(ctx.Writer); err != nil {
		respondError(ctx, err)
		return
	}
}

// RecomputeRanks godoc
// @Summary 立即重算全站名次
// @Tags 管理
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=service.RecomputeResult} "成功"
// @Router /api/admin/ranks/recompute [post]
func (c *AdminController) RecomputeRanks(ctx *gin.Context) {
	result, err := c.RankService.Recompute(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
