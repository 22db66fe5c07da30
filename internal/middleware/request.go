package middleware

import (
	"learnhub_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID 透传或生成请求 ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(util.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(util.ContextRequestIDKey, id)
		c.Header(util.HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger 访问日志
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(util.ContextRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user := util.GetUserFromContext(c); user != nil {
			fields = append(fields, zap.Uint("user_id", user.UserID))
		}

		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request handled", fields...)
		}
	}
}
