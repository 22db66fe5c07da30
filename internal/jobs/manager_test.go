package jobs

import (
	"context"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/testutil"
	"strconv"
	"testing"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func TestScheduleCoalescesBurst(t *testing.T) {
	mr, _ := testutil.OpenTestRedis(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	cfg := &config.Config{}
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}
	cfg.Jobs = config.JobsConfig{Enabled: true, Concurrency: 1}
	cfg.Gamification.RankDebounceSeconds = 30

	m := NewManager(cfg, zap.NewNop())
	t.Cleanup(func() { m.client.Close() })

	for i := 0; i < 5; i++ {
		if err := m.Schedule(context.Background()); err != nil {
			t.Fatalf("schedule %d: %v", i, err)
		}
	}

	inspector := asynq.NewInspector(redisOpt(&cfg.Redis))
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TypeRankRecompute || tasks[0].MaxRetry != rankMaxRetry {
		t.Fatalf("unexpected task %+v", tasks[0])
	}
}
