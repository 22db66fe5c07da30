package util

import (
	"errors"
	"learnhub_backend/internal/model"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{Username: "ada", Role: model.Mentor, IsStaff: true}
	user.ID = 7

	token, err := GenerateJWT(user, testSecret, TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseJWT(token, testSecret, TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "ada" || !claims.HasStaffAccess() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseJWTRejects(t *testing.T) {
	user := &model.User{Username: "ada"}
	user.ID = 1

	refresh, _ := GenerateJWT(user, testSecret, TokenTypeRefresh, time.Minute)
	expired, _ := GenerateJWT(user, testSecret, TokenTypeAccess, -time.Minute)
	access, _ := GenerateJWT(user, testSecret, TokenTypeAccess, time.Minute)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong type", refresh, testSecret},
		{"expired", expired, testSecret},
		{"wrong secret", access, "another-secret-another-secret-xx"},
		{"garbage", "not.a.token", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret, TokenTypeAccess)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
