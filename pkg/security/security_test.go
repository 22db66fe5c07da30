package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterBurst(t *testing.T) {
	l := NewRateLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("fourth request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other clients have their own bucket")
	}
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Fatalf("origin %s: got %q, want %q", tt.origin, got, tt.want)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", w.Code)
	}
}
