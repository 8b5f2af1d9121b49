package node

import (
	"context"
	"errors"
	"strings"
)

// IsResponseFormatUnsupportedError 判断 provider 是否拒绝了结构化输出参数，
// 命中时调用方应回退为仅靠 prompt 约束的请求。
func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "response_format"):
		return true
	case strings.Contains(msg, "json_schema"):
		return true
	case strings.Contains(msg, "response_schema"), strings.Contains(msg, "responseschema"):
		return true
	case strings.Contains(msg, "response_mime_type"), strings.Contains(msg, "responsemimetype"):
		return true
	case strings.Contains(msg, "unknown parameter") && strings.Contains(msg, "response"):
		return true
	case strings.Contains(msg, "invalid") && strings.Contains(msg, "response"):
		return true
	default:
		return false
	}
}

// IsTimeoutError 判断错误是否由超时或取消导致
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout")
}
