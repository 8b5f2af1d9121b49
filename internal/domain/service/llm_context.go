// Package service 放置跨层共享的领域服务约定
package service

import (
	"context"
	"strings"
)

const unknownLabel = "unknown"

type llmCallKey struct{}

// LLMCall 描述一次模型调用所属的业务上下文，供回调打点和日志使用
type LLMCall struct {
	Workflow  string
	Provider  string
	SessionID string
}

// WithLLMCall 覆盖写入调用上下文，空字段沿用外层已有的值
func WithLLMCall(ctx context.Context, call LLMCall) context.Context {
	if ctx == nil {
		return nil
	}
	merged := LLMCallFromContext(ctx)
	if w := strings.TrimSpace(call.Workflow); w != "" {
		merged.Workflow = w
	}
	if p := strings.TrimSpace(call.Provider); p != "" {
		merged.Provider = p
	}
	if s := strings.TrimSpace(call.SessionID); s != "" {
		merged.SessionID = s
	}
	return context.WithValue(ctx, llmCallKey{}, merged)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithLLMCall(ctx, LLMCall{Workflow: workflow, Provider: provider})
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return WithLLMCall(ctx, LLMCall{SessionID: sessionID})
}

// LLMCallFromContext 返回原始值，未设置时各字段为空
func LLMCallFromContext(ctx context.Context) LLMCall {
	if ctx == nil {
		return LLMCall{}
	}
	call, _ := ctx.Value(llmCallKey{}).(LLMCall)
	return call
}

// WorkflowFromContext 用于指标 label，缺省返回 "unknown"
func WorkflowFromContext(ctx context.Context) string {
	return labelOrUnknown(LLMCallFromContext(ctx).Workflow)
}

// ProviderFromContext 用于指标 label，缺省返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	return labelOrUnknown(LLMCallFromContext(ctx).Provider)
}

func labelOrUnknown(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}
