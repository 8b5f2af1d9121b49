package handler

import (
	"github.com/gin-gonic/gin"

	"quzz-ai-api/internal/application/wizard"
	"quzz-ai-api/internal/domain/entity"
	"quzz-ai-api/internal/interfaces/http/dto"
	"quzz-ai-api/pkg/logger"
)

// WizardHandler 向导会话处理器
type WizardHandler struct {
	svc *wizard.Service
}

// NewWizardHandler 创建向导处理器
func NewWizardHandler(svc *wizard.Service) *WizardHandler {
	return &WizardHandler{svc: svc}
}

// CreateSession 创建向导会话
// @Summary 创建向导会话
// @Tags Wizard
// @Produce json
// @Success 201 {object} dto.Response[dto.SessionResponse]
// @Router /v1/wizard/sessions [post]
func (h *WizardHandler) CreateSession(c *gin.Context) {
	sess, err := h.svc.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to create wizard session")
		return
	}
	dto.Created(c, dto.ToSessionResponse(sess))
}

// GetSession 获取会话快照
// @Summary 获取会话快照
// @Tags Wizard
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid} [get]
func (h *WizardHandler) GetSession(c *gin.Context) {
	sid := dto.BindSessionID(c)
	sess, err := h.svc.Get(requestContext(c, sid), sid)
	if err != nil {
		writeError(c, err, "failed to get wizard session")
		return
	}
	dto.Success(c, dto.ToSessionResponse(sess))
}

// DeleteSession 结束会话
// @Summary 结束会话
// @Tags Wizard
// @Param sid path string true "会话 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid} [delete]
func (h *WizardHandler) DeleteSession(c *gin.Context) {
	sid := dto.BindSessionID(c)
	if err := h.svc.Delete(requestContext(c, sid), sid); err != nil {
		writeError(c, err, "failed to delete wizard session")
		return
	}
	dto.NoContent(c)
}

// Start LANDING → CREATE_TEAM
// @Summary 开始向导
// @Tags Wizard
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/start [post]
func (h *WizardHandler) Start(c *gin.Context) {
	sid := dto.BindSessionID(c)
	sess, err := h.svc.Start(requestContext(c, sid), sid)
	if err != nil {
		writeError(c, err, "failed to start wizard")
		return
	}
	dto.Success(c, dto.ToSessionResponse(sess))
}

// SubmitTeam CREATE_TEAM → ROLE_RECO
// @Summary 提交团队信息
// @Tags Wizard
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.TeamRequest true "团队信息"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/team [post]
func (h *WizardHandler) SubmitTeam(c *gin.Context) {
	sid := dto.BindSessionID(c)

	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.svc.SubmitTeam(requestContext(c, sid), sid, req.ToEntity())
	if err != nil {
		writeError(c, err, "failed to submit team")
		return
	}
	dto.Success(c, dto.ToSessionResponse(sess))
}

// RecommendRoles 请求角色推荐，失败时返回空列表
// @Summary 角色推荐
// @Tags Wizard
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.RoleRecommendationResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/role-recommendations [post]
func (h *WizardHandler) RecommendRoles(c *gin.Context) {
	sid := dto.BindSessionID(c)
	roles, err := h.svc.RecommendRoles(requestContext(c, sid), sid)
	if err != nil {
		writeError(c, err, "failed to recommend roles")
		return
	}
	dto.Success(c, &dto.RoleRecommendationResponse{Roles: dto.ToRoleDTOs(roles)})
}

// ConfirmRoles ROLE_RECO → TEMPLATE
// @Summary 确认角色
// @Tags Wizard
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.ConfirmRolesRequest true "角色列表"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/roles [post]
func (h *WizardHandler) ConfirmRoles(c *gin.Context) {
	sid := dto.BindSessionID(c)

	var req dto.ConfirmRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.svc.ConfirmRoles(requestContext(c, sid), sid, req.ToEntity())
	if err != nil {
		writeError(c, err, "failed to confirm roles")
		return
	}
	dto.Success(c, dto.ToSessionResponse(sess))
}

// SelectTemplate TEMPLATE → DASHBOARD，生成失败返回 502 且会话停留在 TEMPLATE
// @Summary 选择模板并生成蓝图
// @Tags Wizard
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.TemplateRequest false "模板选择"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/template [post]
func (h *WizardHandler) SelectTemplate(c *gin.Context) {
	sid := dto.BindSessionID(c)
	ctx := requestContext(c, sid)

	var req dto.TemplateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}
	choice, err := req.ToEntity()
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	sess, err := h.svc.SelectTemplate(ctx, sid, choice)
	if err != nil {
		logger.Warn(ctx, "blueprint generation request failed", "error", err.Error())
		writeError(c, err, "failed to select template")
		return
	}
	dto.Success(c, dto.ToSessionResponse(sess))
}

// GetBlueprint 获取最终项目蓝图
// @Summary 获取项目蓝图
// @Tags Wizard
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.BlueprintResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/blueprint [get]
func (h *WizardHandler) GetBlueprint(c *gin.Context) {
	sid := dto.BindSessionID(c)
	bp, err := h.svc.Blueprint(requestContext(c, sid), sid)
	if err != nil {
		writeError(c, err, "failed to get blueprint")
		return
	}
	dto.Success(c, dto.ToBlueprintResponse(bp))
}

// GetBlueprintTab 获取仪表盘单个标签页
// @Summary 获取蓝图标签页
// @Tags Wizard
// @Produce json
// @Param sid path string true "会话 ID"
// @Param tab path string true "roles | backend | frontend | database"
// @Success 200 {object} dto.Response[dto.TabResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/wizard/sessions/{sid}/blueprint/{tab} [get]
func (h *WizardHandler) GetBlueprintTab(c *gin.Context) {
	sid := dto.BindSessionID(c)
	tab := entity.DashboardTab(dto.BindTab(c))

	bp, err := h.svc.Blueprint(requestContext(c, sid), sid)
	if err != nil {
		writeError(c, err, "failed to get blueprint")
		return
	}
	data, err := bp.Tab(tab)
	if err != nil {
		dto.NotFound(c, err.Error())
		return
	}
	dto.Success(c, dto.ToTabResponse(tab, data))
}
