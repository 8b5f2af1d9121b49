// Package chain 基于 eino compose 编排结构化输出工作流
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	llmctx "quzz-ai-api/internal/domain/service"
	wfmodel "quzz-ai-api/internal/workflow/model"
	wfnode "quzz-ai-api/internal/workflow/node"
	workflowport "quzz-ai-api/internal/workflow/port"
	workflowprompt "quzz-ai-api/internal/workflow/prompt"
	"quzz-ai-api/pkg/logger"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// StructuredSpec 描述一个结构化输出工作流
type StructuredSpec struct {
	// Workflow 用于指标 label 与节点命名
	Workflow string
	PromptID workflowprompt.PromptID

	SchemaName string
	Schema     map[string]any

	// EnvelopeKey 非空时，OpenAI 协议下把非对象根 schema 包一层对象；
	// finalize 节点负责把结果拆回原始形态。
	EnvelopeKey string
}

// StructuredChain init → template → llm → finalize
type StructuredChain struct {
	factory workflowport.ChatModelFactory
	spec    StructuredSpec

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.StructuredGenerateInput, *wfmodel.StructuredGenerateOutput]
	chainErr  error
}

func NewStructuredChain(factory workflowport.ChatModelFactory, spec StructuredSpec) *StructuredChain {
	return &StructuredChain{factory: factory, spec: spec}
}

func (c *StructuredChain) Workflow() string {
	return c.spec.Workflow
}

func (c *StructuredChain) Invoke(ctx context.Context, in *wfmodel.StructuredGenerateInput) (*wfmodel.StructuredGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type structuredChainState struct {
	In       *wfmodel.StructuredGenerateInput
	Provider string
	Messages []*schema.Message
	OutMsg   *schema.Message
	Enforced bool
}

func (c *StructuredChain) getChain() (compose.Runnable[*wfmodel.StructuredGenerateInput, *wfmodel.StructuredGenerateOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *StructuredChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.StructuredGenerateInput, *wfmodel.StructuredGenerateOutput], error) {
	chain := compose.NewChain[*wfmodel.StructuredGenerateInput, *wfmodel.StructuredGenerateOutput]()
	name := c.spec.Workflow

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.StructuredGenerateInput) (*structuredChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			provider := strings.TrimSpace(in.Provider)
			if provider == "" {
				provider = c.factory.DefaultProvider()
			}
			return &structuredChainState{In: in, Provider: provider}, nil
		}),
		compose.WithNodeName(name+".init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *structuredChainState) (*structuredChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			tpl, err := defaultPromptRegistry.ChatTemplate(c.spec.PromptID)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, st.In.Vars)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName(name+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *structuredChainState) (*structuredChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, name, st.Provider)
			chatModel, err := c.factory.Get(ctx, st.Provider)
			if err != nil {
				return nil, err
			}

			st.Enforced = true
			outMsg, err := chatModel.Generate(ctx, st.Messages, c.buildModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm structured output not supported, fallback to prompt-only",
					"provider", st.Provider,
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				st.Enforced = false
				outMsg, err = chatModel.Generate(ctx, st.Messages, c.buildModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(name+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *structuredChainState) (*wfmodel.StructuredGenerateOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			raw := wfnode.ExtractJSONObject(st.OutMsg.Content)
			raw = c.unwrapEnvelope(raw)
			return &wfmodel.StructuredGenerateOutput{
				Raw:  raw,
				Meta: usageMeta(name, st),
			}, nil
		}),
		compose.WithNodeName(name+".finalize"),
	)

	return chain.Compile(ctx)
}

// unwrapEnvelope 模型按信封格式返回时取出内部值，其它情况原样返回。
// EnvelopeKey 需为不含 gjson 通配符的普通字段名。
func (c *StructuredChain) unwrapEnvelope(raw string) string {
	if c.spec.EnvelopeKey == "" {
		return raw
	}
	res := gjson.Parse(raw)
	if !res.IsObject() {
		return raw
	}
	if inner := res.Get(c.spec.EnvelopeKey); inner.Exists() {
		return inner.Raw
	}
	return raw
}

func (c *StructuredChain) buildModelOptions(in *wfmodel.StructuredGenerateInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 5)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	if enableSchema && c.spec.Schema != nil {
		opts = append(opts,
			openaiopts.WithExtraFields(map[string]any{
				"response_format": map[string]any{
					"type": "json_schema",
					"json_schema": map[string]any{
						"name":   c.spec.SchemaName,
						"strict": false,
						"schema": c.openAISchema(),
					},
				},
			}),
			workflowport.WithStructuredOutput(c.spec.SchemaName, c.spec.Schema),
		)
	}
	return opts
}

// openAISchema response_format 要求根为 object
func (c *StructuredChain) openAISchema() map[string]any {
	if c.spec.EnvelopeKey == "" || c.spec.Schema["type"] == "object" {
		return c.spec.Schema
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{c.spec.EnvelopeKey},
		"properties": map[string]any{
			c.spec.EnvelopeKey: c.spec.Schema,
		},
	}
}

func usageMeta(workflow string, st *structuredChainState) wfmodel.LLMUsageMeta {
	meta := wfmodel.LLMUsageMeta{
		Workflow:       workflow,
		Provider:       st.Provider,
		Model:          strings.TrimSpace(st.In.Model),
		SchemaEnforced: st.Enforced,
		GeneratedAt:    time.Now().UTC(),
	}
	if st.In.Temperature != nil {
		meta.Temperature = float64(*st.In.Temperature)
	}
	if rm := st.OutMsg.ResponseMeta; rm != nil && rm.Usage != nil {
		meta.PromptTokens = rm.Usage.PromptTokens
		meta.CompletionTokens = rm.Usage.CompletionTokens
	}
	return meta
}
