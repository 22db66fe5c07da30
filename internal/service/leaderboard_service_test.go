package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"
	"learnhub_backend/internal/util"
	"testing"
	"time"
)

func TestLeaderboardPeriods(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	exam := f.exam("Go", 100)

	veteran := f.user("veteran", 5000)
	weekly := f.user("weekly", 300)
	monthly := f.user("monthly", 800)

	f.attemptAt(veteran.ID, exam.ID, 5000, true, now.AddDate(0, -3, 0))
	f.attemptAt(weekly.ID, exam.ID, 300, true, now.AddDate(0, 0, -2))
	f.attemptAt(monthly.ID, exam.ID, 800, true, now.AddDate(0, 0, -20))
	f.attemptAt(monthly.ID, exam.ID, 100, true, now.AddDate(0, 0, -1))
	// 未通过的记录不计入
	f.attemptAt(weekly.ID, exam.ID, 0, false, now.AddDate(0, 0, -1))

	svc := NewLeaderboardService(f.db, f.users, f.attempt, repository.NoopLeaderboardCache{}, 10, time.Minute)
	svc.Now = func() time.Time { return now }

	tests := []struct {
		period string
		want   []string
		scores []int
	}{
		{util.PeriodAll, []string{"veteran", "monthly", "weekly"}, nil},
		{util.PeriodWeekly, []string{"weekly", "monthly"}, []int{300, 100}},
		{util.PeriodMonthly, []string{"monthly", "weekly"}, []int{900, 300}},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			entries, err := svc.Get(context.Background(), tt.period)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, e := range entries {
				if e.Username != tt.want[i] || e.Rank != i+1 {
					t.Fatalf("entry %d = %s rank %d, want %s", i, e.Username, e.Rank, tt.want[i])
				}
				if tt.scores == nil {
					if e.PeriodScore != nil {
						t.Fatalf("all-time entry carries period_score")
					}
					continue
				}
				if e.PeriodScore == nil || *e.PeriodScore != tt.scores[i] {
					t.Fatalf("entry %d period_score = %v, want %d", i, e.PeriodScore, tt.scores[i])
				}
			}
		})
	}

	if _, err := svc.Get(context.Background(), "yearly"); !errors.Is(err, util.ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestLeaderboardSizeAndTies(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		f.user(name, 100)
	}

	svc := NewLeaderboardService(f.db, f.users, f.attempt, repository.NoopLeaderboardCache{}, 3, time.Minute)
	entries, err := svc.Get(context.Background(), util.PeriodAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.ID != uint(i+1) {
			t.Fatalf("tie order broken: position %d has id %d", i, e.ID)
		}
	}

	svc.SetSize(2)
	entries, _ = svc.Get(context.Background(), util.PeriodAll)
	if len(entries) != 2 {
		t.Fatalf("resized board has %d entries", len(entries))
	}
}

func TestLeaderboardCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	mr, rdb := testutil.OpenTestRedis(t)
	u := f.user("alice", 100)

	svc := NewLeaderboardService(f.db, f.users, f.attempt, repository.NewRedisLeaderboardCache(rdb), 10, time.Minute)

	if _, err := svc.Get(context.Background(), util.PeriodAll); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("leaderboard:all") {
		t.Fatal("leaderboard not cached")
	}

	u.TotalScore = 999
	if err := f.users.UpdateProgress(u); err != nil {
		t.Fatal(err)
	}
	entries, _ := svc.Get(context.Background(), util.PeriodAll)
	if entries[0].TotalScore != 100 {
		t.Fatalf("expected cached score 100, got %d", entries[0].TotalScore)
	}

	if err := svc.Invalidate(context.Background()); err != nil {
		t.Fatal(err)
	}
	entries, _ = svc.Get(context.Background(), util.PeriodAll)
	if entries[0].TotalScore != 999 {
		t.Fatalf("expected fresh score 999, got %d", entries[0].TotalScore)
	}
}
