package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/infrastructure/persistence/redis"
	"quzz-ai-api/internal/interfaces/http/dto"
	"quzz-ai-api/pkg/logger"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 与路由限流，用于触发 LLM 调用的接口
func RateLimit(cfg config.RateLimitConfig, keyPrefix string, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 20
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(c *gin.Context) {
		key := redis.BuildRateLimitKey(keyPrefix, c.ClientIP(), c.FullPath())

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			dto.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
