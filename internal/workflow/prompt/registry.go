// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptRoleRecommendationV1 PromptID = "role_recommendation_v1"
	PromptTechnicalBlueprintV1 PromptID = "technical_blueprint_v1"
)

// Registry 按 PromptID 懒加载并缓存 ChatTemplate
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	system, user, err := r.Texts(id)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// Texts 返回原始的 system/user 模板文本
func (r *Registry) Texts(id PromptID) (system string, user string, err error) {
	base, ok := promptFiles[id]
	if !ok {
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
	if system, err = readEmbeddedText("templates/" + base + ".system.txt"); err != nil {
		return "", "", err
	}
	if user, err = readEmbeddedText("templates/" + base + ".user.txt"); err != nil {
		return "", "", err
	}
	return system, user, nil
}

var promptFiles = map[PromptID]string{
	PromptRoleRecommendationV1: "role_recommendation_v1",
	PromptTechnicalBlueprintV1: "technical_blueprint_v1",
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
