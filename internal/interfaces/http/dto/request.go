// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BindSessionID 从 URI 绑定向导会话 ID
func BindSessionID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("sid"))
}

// BindTab 从 URI 绑定仪表盘标签页
func BindTab(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Param("tab")))
}
