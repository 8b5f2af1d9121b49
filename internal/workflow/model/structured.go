package model

// StructuredGenerateInput 结构化输出工作流的通用输入
type StructuredGenerateInput struct {
	// Vars 模板变量，键与 prompt 模板中的占位符一致
	Vars map[string]any

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// StructuredGenerateOutput 结构化输出工作流的结果：原始 JSON 文本与用量
type StructuredGenerateOutput struct {
	Raw  string
	Meta LLMUsageMeta
}
