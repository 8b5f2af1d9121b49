package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"quzz-ai-api/internal/interfaces/http/dto"
	"quzz-ai-api/pkg/errors"
	"quzz-ai-api/pkg/logger"
)

// writeError AppError 按其状态码输出，其他错误记录日志并返回 500
func writeError(c *gin.Context, err error, msg string) {
	if errors.IsAppError(err) {
		dto.AppError(c, errors.AsAppError(err))
		return
	}
	logger.Error(c.Request.Context(), msg, err)
	dto.InternalError(c, msg)
}

// requestContext 附带会话 ID 的日志上下文
func requestContext(c *gin.Context, sessionID string) context.Context {
	return logger.WithContext(c.Request.Context(), logger.SessionIDKey, sessionID)
}
