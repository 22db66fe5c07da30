package repository_test

import (
	"context"
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/testutil"
	"testing"
)

func seedUsers(t *testing.T, repo *repository.UserRepository, scores ...int) []model.User {
	t.Helper()
	users := make([]model.User, 0, len(scores))
	for i, s := range scores {
		u := model.User{
			Username:   "user" + string(rune('a'+i)),
			Email:      "user" + string(rune('a'+i)) + "@example.com",
			Password:   "x",
			Role:       model.Student,
			TotalScore: s,
		}
		if err := repo.Create(&u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		users = append(users, u)
	}
	return users
}

func TestRedisRankIndexTieOrder(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.OpenTestRedis(t)
	idx := repository.NewRedisRankIndex(client)

	if err := idx.Rebuild(ctx, []repository.RankEntry{
		{UserID: 3, Score: 100},
		{UserID: 1, Score: 100},
		{UserID: 2, Score: 300},
		{UserID: 10, Score: 0},
	}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	want := map[uint]int{2: 1, 1: 2, 3: 3, 10: 4}
	for id, rank := range want {
		got, err := idx.Rank(ctx, id, 0)
		if err != nil {
			t.Fatalf("rank %d: %v", id, err)
		}
		if got != rank {
			t.Fatalf("user %d: rank %d, want %d", id, got, rank)
		}
	}

	top, err := idx.Top(ctx, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 || top[0] != 2 || top[1] != 1 || top[2] != 3 {
		t.Fatalf("unexpected top order %v", top)
	}

	if err := idx.Upsert(ctx, 10, 500); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got, _ := idx.Rank(ctx, 10, 500); got != 1 {
		t.Fatalf("rank after upsert %d, want 1", got)
	}

	if _, err := idx.Rank(ctx, 99, 0); !errors.Is(err, repository.ErrNotIndexed) {
		t.Fatalf("expected ErrNotIndexed, got %v", err)
	}
}

func TestDBRankIndexMatchesOrdering(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := repository.NewUserRepository(db)
	seeded := seedUsers(t, users, 50, 200, 50, 0)
	idx := repository.NewDBRankIndex(users)

	want := []int{2, 1, 3, 4}
	for i, u := range seeded {
		got, err := idx.Rank(context.Background(), u.ID, u.TotalScore)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if got != want[i] {
			t.Fatalf("user %d: rank %d, want %d", u.ID, got, want[i])
		}
	}
}

func TestFallbackRankIndexUsesDatabaseOnMiss(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := repository.NewUserRepository(db)
	seeded := seedUsers(t, users, 10, 20)

	_, client := testutil.OpenTestRedis(t)
	idx := repository.NewFallbackRankIndex(repository.NewRedisRankIndex(client), repository.NewDBRankIndex(users))

	got, err := idx.Rank(context.Background(), seeded[0].ID, seeded[0].TotalScore)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if got != 2 {
		t.Fatalf("rank %d, want 2", got)
	}
}
