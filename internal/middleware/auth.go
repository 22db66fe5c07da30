package middleware

import (
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware 要求有效的 access token
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret, util.TokenTypeAccess)
		if err != nil {
			util.Unauthorized(c)
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// TryAuthMiddleware 可选登录：令牌有效时写入用户，否则按匿名继续
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret, util.TokenTypeAccess); err == nil {
				c.Set(util.ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// StaffMiddleware 需在 AuthMiddleware 之后使用
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			return
		}
		if !user.HasStaffAccess() {
			util.Forbidden(c)
			return
		}
		c.Next()
	}
}

func SuperuserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			return
		}
		if !user.IsSuperuser {
			util.Forbidden(c)
			return
		}
		c.Next()
	}
}
