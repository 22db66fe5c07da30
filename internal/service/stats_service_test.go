package service

import (
	"context"
	"testing"
	"time"
)

func TestDashboardProgression(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 20, 15, 0, 0, 0, time.Local) // 周五
	exam := f.exam("Go", 100)
	u := f.user("alice", 1500)

	f.attemptAt(u.ID, exam.ID, 100, true, now.Add(-time.Hour))
	f.attemptAt(u.ID, exam.ID, 50, true, now.Add(-2*time.Hour))
	f.attemptAt(u.ID, exam.ID, 200, true, now.AddDate(0, 0, -6))
	f.attemptAt(u.ID, exam.ID, 0, false, now.AddDate(0, 0, -3))
	// 窗口之外
	f.attemptAt(u.ID, exam.ID, 999, true, now.AddDate(0, 0, -7))

	stats := NewStatsService(f.users, f.attempt, f.courses, f.exams, f.rank)
	stats.Now = func() time.Time { return now }

	got, err := stats.Dashboard(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalXP != 1500 || got.Level != 2 || got.ExamsTaken != 5 || got.Rank != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if len(got.Progression) != 7 {
		t.Fatalf("progression has %d days", len(got.Progression))
	}

	wantNames := []string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri"}
	wantScores := []int{200, 0, 0, 0, 0, 0, 150}
	for i, d := range got.Progression {
		if d.Name != wantNames[i] || d.Score != wantScores[i] {
			t.Errorf("day %d = %+v, want %s/%d", i, d, wantNames[i], wantScores[i])
		}
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	exam := f.exam("Go", 10)
	u := f.user("alice", 0)
	f.attemptAt(u.ID, exam.ID, 10, true, now.Add(-time.Hour))
	f.attemptAt(u.ID, exam.ID, 0, false, now.Add(-2*time.Hour))
	f.attemptAt(u.ID, exam.ID, 10, true, now.AddDate(0, -2, 0))

	stats := NewStatsService(f.users, f.attempt, f.courses, f.exams, f.rank)
	o, err := stats.Overview()
	if err != nil {
		t.Fatal(err)
	}
	if o.Courses != 1 || o.Exams != 1 || o.Users != 1 || o.Attempts != 3 || o.Attempts30d != 2 {
		t.Fatalf("unexpected overview %+v", o)
	}
	if o.PassRate30d != 0.5 {
		t.Fatalf("pass rate = %v, want 0.5", o.PassRate30d)
	}
}
