package handler

import (
	"github.com/gin-gonic/gin"

	"quzz-ai-api/internal/interfaces/http/dto"
)

// CatalogHandler 静态目录处理器
type CatalogHandler struct {
	catalog *dto.CatalogResponse
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{catalog: dto.NewCatalogResponse()}
}

// GetCatalog 获取技术栈、结构模板与约定目录
// @Summary 获取目录
// @Tags Catalog
// @Produce json
// @Success 200 {object} dto.Response[dto.CatalogResponse]
// @Router /v1/catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	dto.Success(c, h.catalog)
}
