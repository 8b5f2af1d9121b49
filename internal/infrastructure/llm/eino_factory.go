// Package llm 管理各 provider 的 eino ChatModel 实例
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"quzz-ai-api/internal/config"
)

// EinoFactory 按 provider 名称懒加载 ChatModel
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex

	// newGemini 便于测试替换
	newGemini func(ctx context.Context, cfg config.ProviderConfig) (model.BaseChatModel, error)
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
		newGemini: func(ctx context.Context, pc config.ProviderConfig) (model.BaseChatModel, error) {
			return NewGeminiChatModel(ctx, pc)
		},
	}
}

// DefaultProvider 默认 provider 名称
func (f *EinoFactory) DefaultProvider() string {
	return f.config.DefaultProvider
}

// Providers 已配置的 provider 名称，按字典序
func (f *EinoFactory) Providers() []string {
	names := make([]string, 0, len(f.config.Providers))
	for name := range f.config.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	chatModel, err := f.build(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

func (f *EinoFactory) build(ctx context.Context, pc config.ProviderConfig) (model.BaseChatModel, error) {
	switch pc.Type {
	case config.ProviderTypeGemini:
		return f.newGemini(ctx, pc)
	case "", config.ProviderTypeOpenAI:
		cfg := &openai.ChatModelConfig{
			APIKey:      pc.APIKey,
			BaseURL:     pc.BaseURL,
			Model:       pc.Model,
			Temperature: ptrFloat32(float32(pc.Temperature)),
			Timeout:     pc.Timeout,
		}
		if pc.MaxTokens > 0 {
			cfg.MaxTokens = &pc.MaxTokens
		}
		return openai.NewChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider type %q", pc.Type)
	}
}

func ptrFloat32(f float32) *float32 {
	return &f
}
