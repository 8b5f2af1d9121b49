package llm

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quzz-ai-api/internal/config"
)

func TestEinoFactoryCachesPerProvider(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {Type: config.ProviderTypeGemini, Model: "gemini-1.5-flash"},
			"local":  {Type: "llama"},
		},
	}}
	f := NewEinoFactory(cfg)
	builds := 0
	f.newGemini = func(_ context.Context, pc config.ProviderConfig) (model.BaseChatModel, error) {
		builds++
		return newGeminiChatModel(&fakeGenerator{}, pc), nil
	}

	a, err := f.Get(context.Background(), "")
	require.NoError(t, err)
	b, err := f.Get(context.Background(), "gemini")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)
	assert.Equal(t, "gemini", f.DefaultProvider())
	assert.Equal(t, []string{"gemini", "local"}, f.Providers())

	_, err = f.Get(context.Background(), "missing")
	assert.Error(t, err)

	_, err = f.Get(context.Background(), "local")
	assert.ErrorContains(t, err, "unsupported provider type")
}
