package port

import "github.com/cloudwego/eino/components/model"

// StructuredOutputOptions 非 OpenAI 协议的 provider 读取的结构化输出约束
type StructuredOutputOptions struct {
	Name   string
	Schema map[string]any
}

// WithStructuredOutput 以 impl-specific option 的形式携带 JSON Schema。
// 未识别该 option 的 ChatModel 会直接忽略它。
func WithStructuredOutput(name string, schema map[string]any) model.Option {
	return model.WrapImplSpecificOptFn(func(o *StructuredOutputOptions) {
		o.Name = name
		o.Schema = schema
	})
}

// StructuredOutputFromOptions 从调用 option 中取出结构化输出约束；未设置时返回 nil
func StructuredOutputFromOptions(opts ...model.Option) *StructuredOutputOptions {
	o := model.GetImplSpecificOptions(&StructuredOutputOptions{}, opts...)
	if o == nil || o.Schema == nil {
		return nil
	}
	return o
}
