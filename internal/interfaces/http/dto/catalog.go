package dto

import "quzz-ai-api/internal/domain/entity"

// CatalogItemDTO 目录项
type CatalogItemDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CatalogResponse 创建团队与模板选择页所需的目录
type CatalogResponse struct {
	TechStack       []string         `json:"tech_stack"`
	Structures      []CatalogItemDTO `json:"structures"`
	Conventions     []CatalogItemDTO `json:"conventions"`
	DefaultTemplate TemplateDTO      `json:"default_template"`
	DashboardTabs   []string         `json:"dashboard_tabs"`
}

// NewCatalogResponse 从领域目录构建
func NewCatalogResponse() *CatalogResponse {
	tabs := make([]string, 0, len(entity.DashboardTabs))
	for _, t := range entity.DashboardTabs {
		tabs = append(tabs, string(t))
	}
	return &CatalogResponse{
		TechStack:       append([]string(nil), entity.TechCatalog...),
		Structures:      toCatalogItems(entity.StructureCatalog),
		Conventions:     toCatalogItems(entity.ConventionCatalog),
		DefaultTemplate: ToTemplateDTO(entity.DefaultTemplateChoice()),
		DashboardTabs:   tabs,
	}
}

func toCatalogItems(items []entity.CatalogItem) []CatalogItemDTO {
	out := make([]CatalogItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, CatalogItemDTO{ID: it.ID, Name: it.Name, Description: it.Description})
	}
	return out
}
