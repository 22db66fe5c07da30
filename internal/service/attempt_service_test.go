package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/util"
	"testing"
)

func TestSubmitPassUpdatesProgress(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 600, 600)
	u := f.user("alice", 0)

	attempt, err := f.attempts.Submit(context.Background(), u.ID, exam.ID, false, &SubmitRequest{
		Answers:   answers(exam, 2),
		TimeTaken: 150,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Score != 100 || !attempt.IsPassed || attempt.EarnedPoints != 1200 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	got, err := f.users.FindByID(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalScore != 1200 || got.Level != 2 || got.StudyTime != 2 {
		t.Fatalf("progress not applied: score=%d level=%d study=%d", got.TotalScore, got.Level, got.StudyTime)
	}

	if len(f.published.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.published.events))
	}
	evt := f.published.events[0]
	if evt.AttemptID != attempt.ID || evt.TotalScore != 1200 || !evt.IsPassed {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestSubmitFailEarnsNothing(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10, 30)
	u := f.user("bob", 50)

	// 只答对 10 分的题：25 分，不及格
	attempt, err := f.attempts.Submit(context.Background(), u.ID, exam.ID, false, &SubmitRequest{
		Answers:   answers(exam, 1),
		TimeTaken: 600,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Score != 25 || attempt.IsPassed || attempt.EarnedPoints != 0 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	got, _ := f.users.FindByID(u.ID)
	if got.TotalScore != 50 || got.StudyTime != 10 {
		t.Fatalf("score=%d study=%d, want 50 and 10", got.TotalScore, got.StudyTime)
	}
}

func TestSubmitRejectsForeignQuestion(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10)
	other := f.exam("SQL", 10)
	u := f.user("carol", 0)

	_, err := f.attempts.Submit(context.Background(), u.ID, exam.ID, false, &SubmitRequest{
		Answers: answers(other, 1),
	})
	if !errors.Is(err, util.ErrUnknownQuestion) {
		t.Fatalf("err = %v, want ErrUnknownQuestion", err)
	}

	count, _ := f.attempt.CountByUser(u.ID)
	if count != 0 {
		t.Fatalf("attempt persisted on rejected submission")
	}
}

func TestSubmitInactiveExam(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10)
	u := f.user("dave", 0)

	inactive := false
	if _, err := f.examSvc.Update(exam.ID, &ExamRequest{Course: exam.CourseID, Title: exam.Title, IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := f.attempts.Submit(context.Background(), u.ID, exam.ID, false, &SubmitRequest{Answers: answers(exam, 1)})
	if !errors.Is(err, util.ErrExamNotFound) {
		t.Fatalf("student err = %v, want ErrExamNotFound", err)
	}
	if _, err := f.attempts.Submit(context.Background(), u.ID, exam.ID, true, &SubmitRequest{Answers: answers(exam, 1)}); err != nil {
		t.Fatalf("staff submit: %v", err)
	}
}

func TestAttemptVisibility(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10, 30)
	owner := f.user("erin", 0)
	other := f.user("frank", 0)

	failed, err := f.attempts.Submit(context.Background(), owner.ID, exam.ID, false, &SubmitRequest{Answers: answers(exam, 0)})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		viewer  uint
		staff   bool
		visible bool
	}{
		{"owner", owner.ID, false, true},
		{"other user", other.ID, false, false},
		{"anonymous", 0, false, false},
		{"staff", other.ID, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.attempts.Get(failed.ID, tt.viewer, tt.staff)
			if tt.visible && err != nil {
				t.Fatalf("expected visible, got %v", err)
			}
			if !tt.visible && !errors.Is(err, util.ErrAttemptNotFound) {
				t.Fatalf("expected ErrAttemptNotFound, got %v", err)
			}
		})
	}
}
