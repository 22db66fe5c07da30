package repository_test

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"
	"testing"
	"time"
)

func TestToggleLikeParity(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := seedUsers(t, repository.NewUserRepository(db), 0)
	repo := repository.NewCertificateRepository(db)
	const attemptID = 42

	for n := 1; n <= 5; n++ {
		liked, err := repo.ToggleLike(users[0].ID, attemptID)
		if err != nil {
			t.Fatalf("toggle %d: %v", n, err)
		}
		if liked != (n%2 == 1) {
			t.Fatalf("toggle %d: liked=%v", n, liked)
		}
		count, err := repo.CountLikes(attemptID)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != int64(n%2) {
			t.Fatalf("after %d toggles count=%d, want %d", n, count, n%2)
		}
	}
}

func TestListCommentsNewestFirst(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := seedUsers(t, repository.NewUserRepository(db), 0, 0)
	repo := repository.NewCertificateRepository(db)

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"first", "second", "third"} {
		c := &model.CertificateComment{
			AttemptID: 1,
			UserID:    users[i%2].ID,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CreateComment(c); err != nil {
			t.Fatalf("create comment: %v", err)
		}
		if c.User.ID != users[i%2].ID {
			t.Fatalf("author not loaded for %q", text)
		}
	}

	comments, err := repo.ListComments(1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments", len(comments))
	}
	if comments[0].Text != "third" || comments[2].Text != "first" {
		t.Fatalf("unexpected order: %q, %q, %q", comments[0].Text, comments[1].Text, comments[2].Text)
	}
	if comments[0].User.Username == "" {
		t.Fatalf("author not preloaded")
	}
}
