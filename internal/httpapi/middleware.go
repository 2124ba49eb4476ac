package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger emits one structured log line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		start := time.Now()
		context.Next()
		logger.Info("http",
			zap.String("method", context.Request.Method),
			zap.String("path", context.Request.URL.Path),
			zap.Int("status", context.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", context.ClientIP()),
			zap.String("ua", context.Request.UserAgent()),
		)
	}
}

// AdminAuthMiddleware guards the admin JSON API with a static bearer token.
func AdminAuthMiddleware(adminBearerToken string) gin.HandlerFunc {
	return func(context *gin.Context) {
		if adminBearerToken == "" {
			context.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: "admin disabled"})
			return
		}
		authorizationHeader := strings.TrimSpace(context.GetHeader("Authorization"))
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: "missing bearer"})
			return
		}
		provided := strings.TrimPrefix(authorizationHeader, "Bearer ")
		if provided != adminBearerToken {
			context.AbortWithStatusJSON(http.StatusForbidden, gin.H{jsonKeyError: "forbidden"})
			return
		}
		context.Next()
	}
}
