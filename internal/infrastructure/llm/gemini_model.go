package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"quzz-ai-api/internal/config"
	workflowport "quzz-ai-api/internal/workflow/port"
)

const geminiTypeName = "Gemini"

// contentGenerator 即 *genai.Models 的子集
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiChatModel 把 genai 客户端适配为 eino ChatModel。
// 携带 workflowport.WithStructuredOutput 时以 responseSchema 约束输出。
type GeminiChatModel struct {
	models      contentGenerator
	model       string
	maxTokens   int
	temperature float32
}

// NewGeminiChatModel 使用 API Key 创建 Gemini ChatModel
func NewGeminiChatModel(ctx context.Context, pc config.ProviderConfig) (*GeminiChatModel, error) {
	if strings.TrimSpace(pc.APIKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	cc := &genai.ClientConfig{
		APIKey:  pc.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if pc.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: pc.Timeout}
	}
	if pc.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: pc.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiChatModel(client.Models, pc), nil
}

func newGeminiChatModel(models contentGenerator, pc config.ProviderConfig) *GeminiChatModel {
	name := pc.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}
	return &GeminiChatModel{
		models:      models,
		model:       name,
		maxTokens:   pc.MaxTokens,
		temperature: float32(pc.Temperature),
	}
}

func (m *GeminiChatModel) GetType() string { return geminiTypeName }

// IsCallbacksEnabled 回调由本实现自行触发
func (m *GeminiChatModel) IsCallbacksEnabled() bool { return true }

func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (outMsg *schema.Message, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, m.GetType(), components.ComponentOfChatModel)

	common := model.GetCommonOptions(&model.Options{
		Model:       &m.model,
		Temperature: &m.temperature,
		MaxTokens:   &m.maxTokens,
	}, opts...)
	cbConf := &model.Config{
		Model:       derefString(common.Model),
		MaxTokens:   derefInt(common.MaxTokens),
		Temperature: derefFloat32(common.Temperature),
	}

	ctx = callbacks.OnStart(ctx, &model.CallbackInput{Messages: input, Config: cbConf})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	contents, sysInstruction := toGenAIContents(input)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no user content in request")
	}

	gc := &genai.GenerateContentConfig{SystemInstruction: sysInstruction}
	if common.Temperature != nil {
		gc.Temperature = genai.Ptr(*common.Temperature)
	}
	if common.MaxTokens != nil && *common.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(*common.MaxTokens)
	}
	if so := workflowport.StructuredOutputFromOptions(opts...); so != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = ToGenAISchema(so.Schema)
	}

	resp, err := m.models.GenerateContent(ctx, cbConf.Model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("gemini: empty candidates")
	}

	outMsg = &schema.Message{
		Role:    schema.Assistant,
		Content: resp.Text(),
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(resp.Candidates[0].FinishReason),
		},
	}
	var usage *model.TokenUsage
	if um := resp.UsageMetadata; um != nil {
		usage = &model.TokenUsage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
		outMsg.ResponseMeta.Usage = &schema.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}

	callbacks.OnEnd(ctx, &model.CallbackOutput{Message: outMsg, Config: cbConf, TokenUsage: usage})
	return outMsg, nil
}

// Stream 结构化输出只需要完整结果，这里退化为一次性返回
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toGenAIContents(input []*schema.Message) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(input))
	var system []string
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

// ToGenAISchema 把 JSON Schema 子集转换为 genai.Schema。
// additionalProperties 等 Gemini 不支持的关键字会被忽略。
func ToGenAISchema(s map[string]any) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{}
	if t, ok := s["type"].(string); ok {
		out.Type = genaiType(t)
	}
	if d, ok := s["description"].(string); ok {
		out.Description = d
	}
	out.Enum = toStrings(s["enum"])
	out.Required = toStrings(s["required"])

	if items, ok := s["items"].(map[string]any); ok {
		out.Items = ToGenAISchema(items)
	}
	if props, ok := s["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if ps, ok := raw.(map[string]any); ok {
				out.Properties[name] = ToGenAISchema(ps)
			}
		}
		out.PropertyOrdering = propertyOrder(out.Required, props)
	}
	return out
}

// propertyOrder required 字段在前并保持声明顺序，其余按字典序
func propertyOrder(required []string, props map[string]any) []string {
	order := make([]string, 0, len(props))
	seen := make(map[string]struct{}, len(props))
	for _, name := range required {
		if _, ok := props[name]; ok {
			order = append(order, name)
			seen[name] = struct{}{}
		}
	}
	rest := make([]string, 0, len(props))
	for name := range props {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

func toStrings(v any) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat32(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}
