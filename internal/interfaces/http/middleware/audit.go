package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"quzz-ai-api/pkg/logger"
)

// AccessLog 请求日志；skipPaths 中的路由（健康检查、指标）不记录
func AccessLog(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}
		if status >= 500 {
			logger.Warn(c.Request.Context(), "api request", args...)
			return
		}
		logger.Info(c.Request.Context(), "api request", args...)
	}
}
