package service

import (
	"context"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"
	"math/rand"
	"testing"
	"time"
)

func TestRecomputeOrdersByScoreThenID(t *testing.T) {
	f := newFixture(t)
	a := f.user("a", 100)
	b := f.user("b", 300)
	c := f.user("c", 100)
	d := f.user("d", 0)

	res, err := f.rank.Recompute(context.Background())
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if res.Users != 4 || res.Changed != 4 {
		t.Fatalf("unexpected result %+v", res)
	}

	want := map[uint]int{b.ID: 1, a.ID: 2, c.ID: 3, d.ID: 4}
	for id, rank := range want {
		u, _ := f.users.FindByID(id)
		if u.Rank != rank {
			t.Errorf("user %s rank = %d, want %d", u.Username, u.Rank, rank)
		}
	}

	// 没有变化时不写任何行
	res, err = f.rank.Recompute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed != 0 {
		t.Fatalf("second recompute changed %d rows", res.Changed)
	}
}

func TestRecomputeIsPermutation(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(7))
	n := 40
	for i := 0; i < n; i++ {
		f.user("user"+string(rune('A'+i%26))+string(rune('a'+i/26)), rng.Intn(5)*100)
	}

	if _, err := f.rank.Recompute(context.Background()); err != nil {
		t.Fatal(err)
	}

	top, err := f.users.FindTop(n)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool, n)
	for i, u := range top {
		if u.Rank != i+1 {
			t.Fatalf("position %d has rank %d", i+1, u.Rank)
		}
		if seen[u.Rank] {
			t.Fatalf("duplicate rank %d", u.Rank)
		}
		seen[u.Rank] = true
		if i > 0 && top[i-1].TotalScore < u.TotalScore {
			t.Fatalf("ranks not ordered by score at %d", i)
		}
	}
}

func TestHandleAttemptGradedUpdatesIndex(t *testing.T) {
	f := newFixture(t)
	_, rdb := testutil.OpenTestRedis(t)

	index := repository.NewFallbackRankIndex(repository.NewRedisRankIndex(rdb), repository.NewDBRankIndex(f.users))
	rank := NewRankService(f.db, f.users, index)
	sched := &countingScheduler{}
	rank.SetScheduler(sched)

	leader := f.user("leader", 500)
	climber := f.user("climber", 100)
	if _, err := rank.Recompute(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 未通过的事件被忽略
	if err := rank.HandleAttemptGraded(context.Background(), events.AttemptGraded{UserID: climber.ID}); err != nil {
		t.Fatal(err)
	}
	if sched.calls != 0 {
		t.Fatalf("failed attempt scheduled a recompute")
	}

	climber.TotalScore = 900
	if err := f.users.UpdateProgress(climber); err != nil {
		t.Fatal(err)
	}
	// 事件中的分数已过期，以数据库为准
	evt := events.AttemptGraded{UserID: climber.ID, IsPassed: true, TotalScore: 200, CompletedAt: time.Now()}
	if err := rank.HandleAttemptGraded(context.Background(), evt); err != nil {
		t.Fatal(err)
	}
	if sched.calls != 1 {
		t.Fatalf("schedule calls = %d, want 1", sched.calls)
	}

	fresh, _ := f.users.FindByID(climber.ID)
	if got := rank.LiveRank(context.Background(), fresh); got != 1 {
		t.Fatalf("live rank = %d, want 1", got)
	}
	stale, _ := f.users.FindByID(leader.ID)
	if got := rank.LiveRank(context.Background(), stale); got != 2 {
		t.Fatalf("leader live rank = %d, want 2", got)
	}
}

func TestTickerSchedulerCoalesces(t *testing.T) {
	f := newFixture(t)
	f.user("a", 10)
	ticker := NewTickerRankScheduler(f.rank, time.Hour)

	for i := 0; i < 5; i++ {
		if err := ticker.Schedule(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	ticker.flush(context.Background())

	u, _ := f.users.FindByID(1)
	if u.Rank != 1 {
		t.Fatalf("rank = %d after flush, want 1", u.Rank)
	}
	select {
	case <-ticker.dirty:
		t.Fatal("pending flag not cleared")
	default:
	}
}
