package node

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"plain array", ` [1,2] `, `[1,2]`},
		{"code fence", "```json\n[{\"title\":\"Dev\"}]\n```", `[{"title":"Dev"}]`},
		{"leading prose", `Here you go: {"a":{"b":"}"}} hope it helps {x}`, `{"a":{"b":"}"}}`},
		{"array before object", `roles: [{"title":"QA"}] done`, `[{"title":"QA"}]`},
		{"no json", `sorry`, `sorry`},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSONObject(tc.in))
		})
	}
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	assert.False(t, IsResponseFormatUnsupportedError(nil))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("Unknown parameter: 'response_format'")))
	assert.True(t, IsResponseFormatUnsupportedError(errors.New("Error 400, Message: responseSchema is not supported")))
	assert.False(t, IsResponseFormatUnsupportedError(errors.New("rate limit exceeded")))
}

func TestIsTimeoutError(t *testing.T) {
	assert.True(t, IsTimeoutError(fmt.Errorf("llm: %w", context.DeadlineExceeded)))
	assert.True(t, IsTimeoutError(errors.New("Post https://x: net/http: request timeout")))
	assert.False(t, IsTimeoutError(errors.New("bad request")))
}

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "ab...", TruncateByRunes("abcdef", 2))
	assert.Equal(t, "abc", TruncateByRunes("abc", 5))
	assert.Equal(t, "", TruncateByRunes("abc", 0))
}
