package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "router-test-secret-router-test-secret"
	cfg.JWT.AccessExpire = time.Hour
	cfg.JWT.RefreshExpire = time.Hour
	cfg.RateLimit = config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1}
	cfg.Gamification = config.GamificationConfig{
		LeaderboardSize:      10,
		RankRecomputeSeconds: 60,
	}

	a, err := newApp(cfg, testutil.OpenTestDB(t), nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { a.Bus.Close() })
	return &testServer{t: t, app: a}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (s *testServer) mustDo(method, path, token string, body interface{}, want int, out interface{}) {
	s.t.Helper()
	code, env := s.do(method, path, token, body)
	if code != want {
		s.t.Fatalf("%s %s: status %d, want %d (%s)", method, path, code, want, env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			s.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
}

func (s *testServer) signup(username string, staff bool) string {
	s.t.Helper()
	var user model.User
	s.mustDo(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, http.StatusCreated, &user)

	if staff {
		if err := s.app.repos.user.SetStaff(user.ID, true); err != nil {
			s.t.Fatalf("set staff: %v", err)
		}
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	s.mustDo(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": "password123",
	}, http.StatusOK, &tokens)
	return tokens.Access
}

func TestExamFlow(t *testing.T) {
	s := newTestServer(t)
	staff := s.signup("mentor", true)
	alice := s.signup("alice", false)

	var course model.Course
	s.mustDo(http.MethodPost, "/api/courses/admin/manage", staff, gin.H{"title": "Go Basics"}, http.StatusCreated, &course)
	if course.Slug != "go-basics" {
		t.Fatalf("slug = %q, want go-basics", course.Slug)
	}

	var exam model.Exam
	s.mustDo(http.MethodPost, "/api/exams/admin", staff, gin.H{
		"course": course.ID,
		"title":  "Go Basics Exam",
		"questions": []gin.H{
			{"text": "q1", "points": 10, "choices": []gin.H{{"text": "a", "is_correct": true}, {"text": "b"}}},
			{"text": "q2", "points": 30, "choices": []gin.H{{"text": "c"}, {"text": "d", "is_correct": true}}},
		},
	}, http.StatusCreated, &exam)
	if len(exam.Questions) != 2 || exam.PassingScore != model.DefaultPassingScore {
		t.Fatalf("unexpected exam %+v", exam)
	}
	q1, q2 := exam.Questions[0], exam.Questions[1]

	// 学生看不到正确答案
	code, env := s.do(http.MethodGet, fmt.Sprintf("/api/exams/%d", exam.ID), alice, nil)
	if code != http.StatusOK || strings.Contains(string(env.Data), "is_correct") {
		t.Fatalf("exam view leaked answers: %d %s", code, env.Data)
	}

	// 未知题目
	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/exams/%d/submit", exam.ID), alice, gin.H{
		"answers": map[string]uint{"999999": 1},
	})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown question status = %d", code)
	}

	// 只答对 q2：30/40 = 75 分，通过
	var attempt struct {
		ID           uint `json:"id"`
		Score        int  `json:"score"`
		EarnedPoints int  `json:"earned_points"`
		IsPassed     bool `json:"is_passed"`
	}
	s.mustDo(http.MethodPost, fmt.Sprintf("/api/exams/%d/submit", exam.ID), alice, gin.H{
		"answers": map[string]uint{
			fmt.Sprint(q1.ID): q1.Choices[1].ID,
			fmt.Sprint(q2.ID): q2.Choices[1].ID,
		},
		"time_taken": 300,
	}, http.StatusCreated, &attempt)
	if attempt.Score != 75 || !attempt.IsPassed || attempt.EarnedPoints != 30 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	var me model.User
	s.mustDo(http.MethodGet, "/api/auth/me", alice, nil, http.StatusOK, &me)
	if me.TotalScore != 30 || me.StudyTime != 5 || me.Level != 1 || me.Rank != 1 {
		t.Fatalf("unexpected profile %+v", me)
	}

	var board []struct {
		Rank       int    `json:"rank"`
		Username   string `json:"username"`
		TotalScore int    `json:"total_score"`
	}
	s.mustDo(http.MethodGet, "/api/auth/leaderboard?period=weekly", "", nil, http.StatusOK, &board)
	if len(board) != 1 || board[0].Username != "alice" || board[0].Rank != 1 {
		t.Fatalf("unexpected weekly board %+v", board)
	}
	code, _ = s.do(http.MethodGet, "/api/auth/leaderboard?period=daily", "", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("invalid period status = %d", code)
	}

	var detail struct {
		ExamID     *uint `json:"exam_id"`
		TotalXP    int   `json:"total_xp"`
		UserStatus *struct {
			IsPassed bool `json:"is_passed"`
		} `json:"user_status"`
	}
	s.mustDo(http.MethodGet, "/api/courses/go-basics", alice, nil, http.StatusOK, &detail)
	if detail.ExamID == nil || *detail.ExamID != exam.ID || detail.TotalXP != 40 {
		t.Fatalf("unexpected course detail %+v", detail)
	}
	if detail.UserStatus == nil || !detail.UserStatus.IsPassed {
		t.Fatalf("expected passed user_status, got %+v", detail.UserStatus)
	}
	s.mustDo(http.MethodGet, "/api/courses/go-basics", "", nil, http.StatusOK, &detail)

	// 证书社交
	attemptPath := fmt.Sprintf("/api/results/attempts/%d", attempt.ID)
	var like struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	s.mustDo(http.MethodPost, attemptPath+"/like", staff, nil, http.StatusOK, &like)
	if !like.Liked || like.LikesCount != 1 {
		t.Fatalf("first like %+v", like)
	}
	s.mustDo(http.MethodPost, attemptPath+"/like", staff, nil, http.StatusOK, &like)
	if like.Liked || like.LikesCount != 0 {
		t.Fatalf("second like %+v", like)
	}

	code, _ = s.do(http.MethodPost, attemptPath+"/comments", staff, gin.H{"text": "   "})
	if code != http.StatusBadRequest {
		t.Fatalf("blank comment status = %d", code)
	}
	s.mustDo(http.MethodPost, attemptPath+"/comments", staff, gin.H{"text": "Nice work"}, http.StatusCreated, nil)

	var comments []struct {
		Text string `json:"text"`
	}
	s.mustDo(http.MethodGet, attemptPath+"/comments", "", nil, http.StatusOK, &comments)
	if len(comments) != 1 || comments[0].Text != "Nice work" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	var public struct {
		IsPassed      bool  `json:"is_passed"`
		CommentsCount int64 `json:"comments_count"`
	}
	s.mustDo(http.MethodGet, attemptPath, "", nil, http.StatusOK, &public)
	if !public.IsPassed || public.CommentsCount != 1 {
		t.Fatalf("unexpected public certificate %+v", public)
	}
}

func TestPermissions(t *testing.T) {
	s := newTestServer(t)
	student := s.signup("bob", false)

	tests := []struct {
		method string
		path   string
		token  string
		status int
	}{
		{http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/exams/1", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/courses/admin/manage", student, http.StatusForbidden},
		{http.MethodPost, "/api/exams/admin", student, http.StatusForbidden},
		{http.MethodGet, "/api/admin/overview", student, http.StatusForbidden},
		{http.MethodGet, "/api/auth/admin/users", student, http.StatusForbidden},
		{http.MethodGet, "/api/courses", "", http.StatusOK},
		{http.MethodGet, "/api/courses/missing", "", http.StatusNotFound},
		{http.MethodGet, "/api/results/attempts/42", "", http.StatusNotFound},
		{http.MethodGet, "/api/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			code, env := s.do(tt.method, tt.path, tt.token, nil)
			if code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", code, tt.status, env.Message)
			}
		})
	}
}

func TestToggleStaffRequiresSuperuser(t *testing.T) {
	s := newTestServer(t)
	staff := s.signup("carol", true)
	s.signup("dave", false)

	code, _ := s.do(http.MethodPost, "/api/auth/admin/users/2/toggle-staff", staff, nil)
	if code != http.StatusForbidden {
		t.Fatalf("staff toggle status = %d, want 403", code)
	}
}

func TestRefreshToken(t *testing.T) {
	s := newTestServer(t)
	s.signup("erin", false)

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	s.mustDo(http.MethodPost, "/api/auth/login", "", gin.H{"username": "erin@example.com", "password": "password123"}, http.StatusOK, &tokens)

	var refreshed struct {
		Access string `json:"access"`
	}
	s.mustDo(http.MethodPost, "/api/auth/token/refresh", "", gin.H{"refresh": tokens.Refresh}, http.StatusOK, &refreshed)
	if refreshed.Access == "" {
		t.Fatal("expected new access token")
	}

	// access 令牌不能用于刷新
	code, _ := s.do(http.MethodPost, "/api/auth/token/refresh", "", gin.H{"refresh": tokens.Access})
	if code != http.StatusUnauthorized {
		t.Fatalf("refresh with access token status = %d", code)
	}
}
