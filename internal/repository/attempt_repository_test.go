package repository_test

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"
	"testing"
	"time"
)

func TestSumEarnedSince(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := seedUsers(t, repository.NewUserRepository(db), 0, 0, 0)
	repo := repository.NewAttemptRepository(db)

	now := time.Now()
	attempts := []model.ExamAttempt{
		{UserID: users[0].ID, ExamID: 1, EarnedPoints: 30, IsPassed: true, CompletedAt: now.Add(-time.Hour)},
		{UserID: users[0].ID, ExamID: 2, EarnedPoints: 20, IsPassed: true, CompletedAt: now.Add(-48 * time.Hour)},
		{UserID: users[1].ID, ExamID: 1, EarnedPoints: 50, IsPassed: true, CompletedAt: now.Add(-2 * time.Hour)},
		{UserID: users[1].ID, ExamID: 2, EarnedPoints: 90, IsPassed: true, CompletedAt: now.Add(-10 * 24 * time.Hour)},
		{UserID: users[2].ID, ExamID: 1, EarnedPoints: 0, IsPassed: false, CompletedAt: now.Add(-time.Hour)},
	}
	for i := range attempts {
		if err := repo.Create(&attempts[i]); err != nil {
			t.Fatalf("create attempt: %v", err)
		}
	}

	rows, err := repo.SumEarnedSince(now.Add(-7*24*time.Hour), 10)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
	// 两人同为 50 分，id 小的在前
	if rows[0].UserID != users[0].ID || rows[0].Points != 50 || rows[1].UserID != users[1].ID || rows[1].Points != 50 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	ids, err := repo.CompleterIDs(1)
	if err != nil {
		t.Fatalf("completers: %v", err)
	}
	if len(ids) != 2 || ids[0] != users[1].ID {
		t.Fatalf("unexpected completers %v", ids)
	}
}

func TestAdjacentLessons(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewCourseRepository(db)

	course := &model.Course{Title: "Go", Slug: "go"}
	if err := repo.Create(course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	var lessons []*model.Lesson
	for _, order := range []uint{2, 1, 3} {
		l := &model.Lesson{CourseID: course.ID, Title: "lesson", Order: order}
		if err := repo.CreateLesson(l); err != nil {
			t.Fatalf("create lesson: %v", err)
		}
		lessons = append(lessons, l)
	}

	prev, next, err := repo.AdjacentLessons(lessons[0])
	if err != nil {
		t.Fatalf("adjacent: %v", err)
	}
	if prev == nil || *prev != lessons[1].ID || next == nil || *next != lessons[2].ID {
		t.Fatalf("unexpected neighbours prev=%v next=%v", prev, next)
	}

	prev, _, _ = repo.AdjacentLessons(lessons[1])
	if prev != nil {
		t.Fatalf("first lesson should have no previous")
	}
}
