package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ExamSubmissions result 取值 passed / failed
	ExamSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_submissions_total",
			Help: "Graded exam submissions by outcome",
		},
		[]string{"result"},
	)

	// RankRecomputes status 取值 success / error
	RankRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_recompute_total",
			Help: "Batch rank rewrites by outcome",
		},
		[]string{"status"},
	)

	RankRecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_recompute_duration_seconds",
			Help:    "Duration of batch rank rewrites",
			Buckets: prometheus.DefBuckets,
		},
	)

	LeaderboardCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_requests_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"period", "result"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ExamSubmissions,
			RankRecomputes,
			RankRecomputeDuration,
			LeaderboardCache,
		)
	})
}

func ObserveSubmission(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	ExamSubmissions.WithLabelValues(result).Inc()
}

func ObserveRankRecompute(start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RankRecomputes.WithLabelValues(status).Inc()
	RankRecomputeDuration.Observe(time.Since(start).Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
