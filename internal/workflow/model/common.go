package model

import "time"

// LLMUsageMeta 单次 LLM 调用的用量与参数
type LLMUsageMeta struct {
	Workflow         string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	SchemaEnforced   bool
	GeneratedAt      time.Time
}
