package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quzz-ai-api/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 64
)

// RequestID 沿用客户端传入的请求 ID，缺失或不合法时生成新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// SessionContext 把路径中的会话 ID 写入日志上下文
func SessionContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid := c.Param("sid"); sid != "" {
			c.Set("session_id", sid)
			ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, sid)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
