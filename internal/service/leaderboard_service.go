package service

import (
	"context"
	"encoding/json"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	Level       int    `json:"level"`
	TotalScore  int    `json:"total_score"`
	PeriodScore *int   `json:"period_score,omitempty"` // 仅 weekly / monthly
}

type LeaderboardService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.AttemptRepository
	Cache       repository.LeaderboardCache
	TTL         time.Duration
	Now         func() time.Time

	size  atomic.Int64
	group singleflight.Group
}

func NewLeaderboardService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	attemptRepo *repository.AttemptRepository,
	cache repository.LeaderboardCache,
	size int,
	ttl time.Duration,
) *LeaderboardService {
	s := &LeaderboardService{
		DB:          db,
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		Cache:       cache,
		TTL:         ttl,
		Now:         time.Now,
	}
	s.size.Store(int64(size))
	return s
}

// SetSize 配置热更新时调整榜单长度，同时清空缓存
func (s *LeaderboardService) SetSize(size int) {
	if size <= 0 || int64(size) == s.size.Load() {
		return
	}
	s.size.Store(int64(size))
	if err := s.Invalidate(context.Background()); err != nil {
		logger.Log.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

func (s *LeaderboardService) Size() int {
	return int(s.size.Load())
}

func windowStart(period string, now time.Time) time.Time {
	switch period {
	case util.PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case util.PeriodMonthly:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// Get 返回指定周期的排行榜；缓存未命中时同一周期只查询一次数据库
func (s *LeaderboardService) Get(ctx context.Context, period string) ([]LeaderboardEntry, error) {
	if period == "" {
		period = util.PeriodAll
	}
	if !util.ValidPeriod(period) {
		return nil, util.ErrInvalidPeriod
	}

	if data, ok, err := s.Cache.Get(ctx, period); err != nil {
		logger.Log.Warn("Leaderboard cache read failed", zap.String("period", period), zap.Error(err))
	} else if ok {
		var entries []LeaderboardEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			monitoring.LeaderboardCache.WithLabelValues(period, "hit").Inc()
			return entries, nil
		}
	}
	monitoring.LeaderboardCache.WithLabelValues(period, "miss").Inc()

	v, err, _ := s.group.Do(period, func() (interface{}, error) {
		entries, err := s.load(ctx, period)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(entries); err == nil {
			if err := s.Cache.Set(ctx, period, data, s.TTL); err != nil {
				logger.Log.Warn("Leaderboard cache write failed", zap.String("period", period), zap.Error(err))
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LeaderboardEntry), nil
}

func (s *LeaderboardService) load(ctx context.Context, period string) ([]LeaderboardEntry, error) {
	db := s.DB.WithContext(ctx)
	limit := s.Size()

	if period == util.PeriodAll {
		users, err := s.UserRepo.WithTx(db).FindTop(limit)
		if err != nil {
			return nil, err
		}
		entries := make([]LeaderboardEntry, 0, len(users))
		for i := range users {
			entries = append(entries, newLeaderboardEntry(i+1, &users[i], nil))
		}
		return entries, nil
	}

	rows, err := s.AttemptRepo.WithTx(db).SumEarnedSince(windowStart(period, s.Now()), limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	users, err := s.UserRepo.WithTx(db).FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		u, ok := byID[r.UserID]
		if !ok {
			continue
		}
		points := r.Points
		entries = append(entries, newLeaderboardEntry(len(entries)+1, u, &points))
	}
	return entries, nil
}

func newLeaderboardEntry(rank int, u *model.User, periodScore *int) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:        rank,
		ID:          u.ID,
		Username:    u.Username,
		Avatar:      u.Avatar,
		Level:       u.Level,
		TotalScore:  u.TotalScore,
		PeriodScore: periodScore,
	}
}

func (s *LeaderboardService) Invalidate(ctx context.Context) error {
	return s.Cache.Invalidate(ctx, util.Periods...)
}

// HandleAttemptGraded 只有通过的答题会改变积分
func (s *LeaderboardService) HandleAttemptGraded(ctx context.Context, evt events.AttemptGraded) error {
	if !evt.IsPassed {
		return nil
	}
	return s.Invalidate(ctx)
}
