package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankScheduler 安排一次批量名次重算，实现方负责合并短时间内的多次请求
type RankScheduler interface {
	Schedule(ctx context.Context) error
}

type RankService struct {
	DB        *gorm.DB
	UserRepo  *repository.UserRepository
	Index     repository.RankIndex
	scheduler RankScheduler
	mu        sync.Mutex // 同一进程内的重算串行执行
}

func NewRankService(db *gorm.DB, userRepo *repository.UserRepository, index repository.RankIndex) *RankService {
	return &RankService{
		DB:       db,
		UserRepo: userRepo,
		Index:    index,
	}
}

func (s *RankService) SetScheduler(scheduler RankScheduler) {
	s.scheduler = scheduler
}

type RecomputeResult struct {
	Users    int           `json:"users"`
	Changed  int           `json:"changed"`
	Duration time.Duration `json:"duration"`
}

// Recompute 按 total_score 降序、id 升序重写 users.rank，只更新名次变化的行，并重建实时索引
func (s *RankService) Recompute(ctx context.Context) (res *RecomputeResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { monitoring.ObserveRankRecompute(start, err) }()

	res = &RecomputeResult{}
	entries := make([]repository.RankEntry, 0)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		rows, err := users.RankRows()
		if err != nil {
			return err
		}
		res.Users = len(rows)
		entries = make([]repository.RankEntry, 0, len(rows))

		for i, row := range rows {
			entries = append(entries, repository.RankEntry{UserID: row.ID, Score: row.TotalScore})
			if row.Rank == i+1 {
				continue
			}
			if err := users.UpdateRank(row.ID, i+1); err != nil {
				return fmt.Errorf("update rank of user %d: %w", row.ID, err)
			}
			res.Changed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.Index.Rebuild(ctx, entries); err != nil {
		logger.Log.Warn("Failed to rebuild rank index", zap.Error(err))
	}

	res.Duration = time.Since(start)
	logger.Log.Info("Ranks recomputed",
		zap.Int("users", res.Users),
		zap.Int("changed", res.Changed),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// LiveRank 实时名次；索引不可用时退回到上次批量计算的结果
func (s *RankService) LiveRank(ctx context.Context, user *model.User) int {
	rank, err := s.Index.Rank(ctx, user.ID, user.TotalScore)
	if err != nil {
		logger.Log.Warn("Rank index lookup failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return user.Rank
	}
	return rank
}

// HandleAttemptGraded 通过后更新实时索引并安排批量重算
func (s *RankService) HandleAttemptGraded(ctx context.Context, evt events.AttemptGraded) error {
	if !evt.IsPassed {
		return nil
	}

	// 事件可能乱序到达，以数据库中的当前积分为准
	user, err := s.UserRepo.WithTx(s.DB.WithContext(ctx)).FindByID(evt.UserID)
	if err != nil {
		return err
	}
	indexErr := s.Index.Upsert(ctx, user.ID, user.TotalScore)

	var scheduleErr error
	if s.scheduler != nil {
		scheduleErr = s.scheduler.Schedule(ctx)
	}
	return errors.Join(indexErr, scheduleErr)
}

// TickerRankScheduler 没有任务队列时使用：标记为待重算，由定时器统一执行
type TickerRankScheduler struct {
	rank     *RankService
	interval time.Duration
	dirty    chan struct{}
}

func NewTickerRankScheduler(rank *RankService, interval time.Duration) *TickerRankScheduler {
	return &TickerRankScheduler{
		rank:     rank,
		interval: interval,
		dirty:    make(chan struct{}, 1),
	}
}

func (t *TickerRankScheduler) Schedule(context.Context) error {
	select {
	case t.dirty <- struct{}{}:
	default:
	}
	return nil
}

// Run 阻塞直到 ctx 取消
func (t *TickerRankScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.flush(ctx)
		}
	}
}

func (t *TickerRankScheduler) flush(ctx context.Context) {
	select {
	case <-t.dirty:
	default:
		return
	}
	if _, err := t.rank.Recompute(ctx); err != nil {
		logger.Log.Error("Scheduled rank recompute failed", zap.Error(err))
		_ = t.Schedule(ctx)
	}
}
