package jobs

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/service"
	"learnhub_backend/pkg/logger"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeRankRecompute = "rank:recompute"

	rankMaxRetry = 3
	rankTimeout  = 2 * time.Minute
)

// Manager 基于 asynq 的后台任务，实现 service.RankScheduler
type Manager struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	debounce time.Duration
	log      *zap.Logger
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	opt := redisOpt(&cfg.Redis)
	log = log.Named("jobs")

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Jobs.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			log.Error("Job failed", zap.String("type", task.Type()), zap.Int("retried", retried), zap.Error(err))
		}),
		Logger: logger.NewAsynqAdapter(log),
	})

	return &Manager{
		client:   asynq.NewClient(opt),
		server:   server,
		mux:      asynq.NewServeMux(),
		debounce: cfg.Gamification.RankDebounce(),
		log:      log,
	}
}

func (m *Manager) RegisterHandlers(rank *service.RankService) {
	m.mux.HandleFunc(TypeRankRecompute, handleRankRecompute(rank))
}

// Start 非阻塞启动 worker
func (m *Manager) Start() error {
	m.log.Info("Starting job worker")
	return m.server.Start(m.mux)
}

func (m *Manager) Stop() {
	m.log.Info("Stopping job worker")
	m.server.Shutdown()
	if err := m.client.Close(); err != nil {
		m.log.Warn("Failed to close job client", zap.Error(err))
	}
}

// Schedule 延迟 debounce 后执行重算；窗口内的重复请求被 asynq.Unique 合并
func (m *Manager) Schedule(ctx context.Context) error {
	task := asynq.NewTask(TypeRankRecompute, nil)

	uniqueTTL := m.debounce
	if uniqueTTL < time.Second {
		uniqueTTL = time.Second
	}

	info, err := m.client.EnqueueContext(ctx, task,
		asynq.Unique(uniqueTTL),
		asynq.ProcessIn(m.debounce),
		asynq.MaxRetry(rankMaxRetry),
		asynq.Timeout(rankTimeout),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeRankRecompute, err)
	}

	m.log.Debug("Queued rank recompute", zap.String("id", info.ID), zap.Duration("delay", m.debounce))
	return nil
}

func handleRankRecompute(rank *service.RankService) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		_, err := rank.Recompute(ctx)
		return err
	}
}
