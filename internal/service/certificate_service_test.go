package service

import (
	"errors"
	"learnhub_backend/internal/util"
	"strings"
	"testing"
	"time"
)

func TestCertificateRequiresPassedAttempt(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10)
	u := f.user("alice", 0)
	failed := f.attemptAt(u.ID, exam.ID, 0, false, time.Now())

	svc := NewCertificateService(f.certs, f.attempt)

	if _, err := svc.ToggleLike(u.ID, failed.ID); !errors.Is(err, util.ErrCertificateNotFound) {
		t.Fatalf("like err = %v", err)
	}
	if _, err := svc.AddComment(u.ID, failed.ID, "hi"); !errors.Is(err, util.ErrCertificateNotFound) {
		t.Fatalf("comment err = %v", err)
	}
	if _, err := svc.ListComments(9999); !errors.Is(err, util.ErrCertificateNotFound) {
		t.Fatalf("list err = %v", err)
	}
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10)
	u := f.user("alice", 0)
	passed := f.attemptAt(u.ID, exam.ID, 10, true, time.Now())
	svc := NewCertificateService(f.certs, f.attempt)

	tests := []struct {
		name string
		text string
		err  error
	}{
		{"blank", "  \n ", util.ErrEmptyComment},
		{"too long", strings.Repeat("长", util.MaxCommentLength+1), util.ErrCommentTooLong},
		{"max length", strings.Repeat("长", util.MaxCommentLength), nil},
		{"trimmed", "  great job  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.AddComment(u.ID, passed.ID, tt.text)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if err == nil && view.Text != strings.TrimSpace(tt.text) {
				t.Fatalf("text = %q", view.Text)
			}
			if err == nil && view.User.Username != "alice" {
				t.Fatalf("comment user = %+v", view.User)
			}
		})
	}

	social, err := svc.Social(passed.ID, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if social.CommentsCount != 2 || social.LikesCount != 0 || social.Liked {
		t.Fatalf("unexpected social %+v", social)
	}
}

func TestToggleLikeCounts(t *testing.T) {
	f := newFixture(t)
	exam := f.exam("Go", 10)
	owner := f.user("alice", 0)
	fan := f.user("bob", 0)
	passed := f.attemptAt(owner.ID, exam.ID, 10, true, time.Now())
	svc := NewCertificateService(f.certs, f.attempt)

	res, err := svc.ToggleLike(fan.ID, passed.ID)
	if err != nil || !res.Liked || res.LikesCount != 1 {
		t.Fatalf("first toggle = %+v, %v", res, err)
	}
	res, _ = svc.ToggleLike(owner.ID, passed.ID)
	if !res.Liked || res.LikesCount != 2 {
		t.Fatalf("owner toggle = %+v", res)
	}
	res, _ = svc.ToggleLike(fan.ID, passed.ID)
	if res.Liked || res.LikesCount != 1 {
		t.Fatalf("unlike = %+v", res)
	}

	social, _ := svc.Social(passed.ID, fan.ID)
	if social.Liked {
		t.Fatal("fan still marked as liked")
	}
	social, _ = svc.Social(passed.ID, 0)
	if social.Liked || social.LikesCount != 1 {
		t.Fatalf("anonymous social = %+v", social)
	}
}
