package chain

import (
	workflowport "quzz-ai-api/internal/workflow/port"
	workflowprompt "quzz-ai-api/internal/workflow/prompt"
)

const (
	WorkflowRoleRecommendation = "role_recommendation"
	WorkflowTechnicalBlueprint = "technical_blueprint"
)

// NewRoleRecommendationChain 角色推荐：根为数组
func NewRoleRecommendationChain(factory workflowport.ChatModelFactory) *StructuredChain {
	return NewStructuredChain(factory, StructuredSpec{
		Workflow:    WorkflowRoleRecommendation,
		PromptID:    workflowprompt.PromptRoleRecommendationV1,
		SchemaName:  "recommended_roles",
		Schema:      RoleRecommendationJSONSchema(),
		EnvelopeKey: "roles",
	})
}

// NewTechnicalBlueprintChain 技术蓝图：根为对象
func NewTechnicalBlueprintChain(factory workflowport.ChatModelFactory) *StructuredChain {
	return NewStructuredChain(factory, StructuredSpec{
		Workflow:   WorkflowTechnicalBlueprint,
		PromptID:   workflowprompt.PromptTechnicalBlueprintV1,
		SchemaName: "technical_blueprint",
		Schema:     TechnicalBlueprintJSONSchema(),
	})
}

func RoleRecommendationJSONSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"title", "responsibilities", "requiredSkills"},
			"properties": map[string]any{
				"title":            map[string]any{"type": "string"},
				"responsibilities": stringArraySchema(),
				"requiredSkills":   stringArraySchema(),
			},
		},
	}
}

func TechnicalBlueprintJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"backend", "frontend", "database"},
		"properties": map[string]any{
			"backend":  scaffoldSchema(),
			"frontend": scaffoldSchema(),
			"database": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []any{"schema"},
				"properties": map[string]any{
					"schema": map[string]any{"type": "string"},
				},
			},
		},
	}
}

func scaffoldSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"directory", "files"},
		"properties": map[string]any{
			"directory": map[string]any{"type": "string"},
			"files": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"name", "path", "content"},
					"properties": map[string]any{
						"name":    map[string]any{"type": "string"},
						"path":    map[string]any{"type": "string"},
						"content": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func stringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
