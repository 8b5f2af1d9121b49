package entity

import (
	"fmt"
	"strings"
)

// StructureKind 项目目录结构模板
type StructureKind string

const (
	StructureAtomic   StructureKind = "atomic"
	StructureFeature  StructureKind = "feature"
	StructureStandard StructureKind = "standard"
)

// CatalogItem 可选项（结构模板 / 约定）的展示信息
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StructureCatalog 结构模板目录，顺序即展示顺序
var StructureCatalog = []CatalogItem{
	{ID: string(StructureAtomic), Name: "Atomic Design", Description: "Component-driven hierarchical structure"},
	{ID: string(StructureFeature), Name: "Feature-based", Description: "Structure with folders isolated by feature units"},
	{ID: string(StructureStandard), Name: "Standard MVC", Description: "Traditional layered architecture"},
}

// ConventionCatalog 开发约定目录
var ConventionCatalog = []CatalogItem{
	{ID: "eslint", Name: "ESLint", Description: "Syntax linting"},
	{ID: "prettier", Name: "Prettier", Description: "Code formatting"},
	{ID: "gitflow", Name: "Git-Flow Strategy", Description: "Branch management strategy (Main, Develop, Feature)"},
	{ID: "commit", Name: "Conventional Commits", Description: "Semantic commit message rules"},
}

// TemplateChoice 模板选择
type TemplateChoice struct {
	Structure   StructureKind `json:"structure"`
	Conventions []string      `json:"conventions"`
}

// DefaultTemplateChoice 默认：atomic + eslint/prettier
func DefaultTemplateChoice() TemplateChoice {
	return TemplateChoice{
		Structure:   StructureAtomic,
		Conventions: []string{"eslint", "prettier"},
	}
}

// ParseStructure 解析结构模板 ID
func ParseStructure(s string) (StructureKind, bool) {
	k := StructureKind(strings.ToLower(strings.TrimSpace(s)))
	for _, item := range StructureCatalog {
		if item.ID == string(k) {
			return k, true
		}
	}
	return "", false
}

// IsKnownConvention 约定是否在目录中
func IsKnownConvention(id string) bool {
	for _, item := range ConventionCatalog {
		if item.ID == id {
			return true
		}
	}
	return false
}

// NewTemplateChoice 校验并构造模板选择；约定按选择顺序去重
func NewTemplateChoice(structure string, conventions []string) (TemplateChoice, error) {
	kind, ok := ParseStructure(structure)
	if !ok {
		return TemplateChoice{}, fmt.Errorf("unknown structure %q", structure)
	}

	out := make([]string, 0, len(conventions))
	seen := make(map[string]struct{}, len(conventions))
	for _, c := range conventions {
		id := strings.ToLower(strings.TrimSpace(c))
		if !IsKnownConvention(id) {
			return TemplateChoice{}, fmt.Errorf("unknown convention %q", c)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return TemplateChoice{Structure: kind, Conventions: out}, nil
}

// Clone 深拷贝
func (t TemplateChoice) Clone() TemplateChoice {
	return TemplateChoice{Structure: t.Structure, Conventions: cloneStrings(t.Conventions)}
}
