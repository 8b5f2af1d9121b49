// Package eino 注册 eino 全局回调，把模型调用接入指标、追踪与日志
package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quzz-ai-api/internal/domain/service"
	"quzz-ai-api/pkg/logger"
	"quzz-ai-api/pkg/metrics"
)

// callStateKey OnStart 写入，OnEnd/OnError 读取
type callStateKey struct{}

type callState struct {
	start    time.Time
	workflow string
	provider string
	model    string
}

func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			st := &callState{
				start:    time.Now(),
				workflow: service.WorkflowFromContext(ctx),
				provider: service.ProviderFromContext(ctx),
				model:    modelNameFromInput(input),
			}
			ctx = context.WithValue(ctx, callStateKey{}, st)

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", st.workflow),
				attribute.String("llm.provider", st.provider),
				attribute.String("llm.model", st.model),
			}
			if sid := service.LLMCallFromContext(ctx).SessionID; sid != "" {
				attrs = append(attrs, attribute.String("wizard.session_id", sid))
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			st := stateFromContext(ctx)
			if m := modelNameFromOutput(output); m != "" {
				st.model = m
			}

			metrics.LLMCallTotal.WithLabelValues(st.workflow, st.provider, st.model, "success").Inc()
			elapsed := st.elapsed()
			if elapsed > 0 {
				metrics.LLMCallDuration.WithLabelValues(st.workflow, st.provider, st.model).Observe(elapsed.Seconds())
			}

			span := trace.SpanFromContext(ctx)
			if output != nil && output.TokenUsage != nil {
				promptTokens := output.TokenUsage.PromptTokens
				completionTokens := output.TokenUsage.CompletionTokens

				metrics.LLMTokensUsed.WithLabelValues(st.workflow, st.provider, st.model, "prompt").Add(float64(promptTokens))
				metrics.LLMTokensUsed.WithLabelValues(st.workflow, st.provider, st.model, "completion").Add(float64(completionTokens))
				span.SetAttributes(
					attribute.Int("llm.prompt_tokens", promptTokens),
					attribute.Int("llm.completion_tokens", completionTokens),
				)
			}
			span.End()

			logger.Debug(ctx, "llm call finished",
				"workflow", st.workflow,
				"provider", st.provider,
				"model", st.model,
				"duration_ms", elapsed.Milliseconds(),
			)
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocb.RunInfo, err error) context.Context {
			st := stateFromContext(ctx)

			metrics.LLMCallTotal.WithLabelValues(st.workflow, st.provider, st.model, "error").Inc()
			if elapsed := st.elapsed(); elapsed > 0 {
				metrics.LLMCallDuration.WithLabelValues(st.workflow, st.provider, st.model).Observe(elapsed.Seconds())
			}

			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return ctx
		},
	}
}

// stateFromContext 没有 OnStart 记录时退回 context 中的 label
func stateFromContext(ctx context.Context) *callState {
	if st, ok := ctx.Value(callStateKey{}).(*callState); ok && st != nil {
		return st
	}
	return &callState{
		workflow: service.WorkflowFromContext(ctx),
		provider: service.ProviderFromContext(ctx),
	}
}

func (s *callState) elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start)
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
