package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// Get godoc
// @Summary 排行榜
// @Description all 按总积分排序；weekly、monthly 按最近 7 天、30 天内获得的积分排序，并返回 period_score
// @Tags 排行榜
// @Produce  json
// @Param   period query string false "统计周期" Enums(all, weekly, monthly) default(all)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Failure 400 {object} util.Response "period 不合法"
// @Router /api/auth/leaderboard [get]
func (c *LeaderboardController) Get(ctx *gin.Context) {
	period := ctx.DefaultQuery("period", util.PeriodAll)
	if !util.ValidPeriod(period) {
		respondError(ctx, util.ErrInvalidPeriod)
		return
	}

	entries, err := c.LeaderboardService.Get(ctx.Request.Context(), period)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
