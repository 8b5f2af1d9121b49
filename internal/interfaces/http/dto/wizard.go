package dto

import (
	"time"

	"quzz-ai-api/internal/domain/entity"
)

// TeamRequest 提交团队信息
type TeamRequest struct {
	Name        string   `json:"name" binding:"required"`
	Goal        string   `json:"goal" binding:"required"`
	TechStack   []string `json:"tech_stack" binding:"required,min=1"`
	Description string   `json:"description"`
}

// ToEntity 转为领域对象（去除空白并按选择顺序去重）
func (r *TeamRequest) ToEntity() entity.TeamData {
	return entity.NewTeamData(r.Name, r.Goal, r.TechStack, r.Description)
}

// RoleDTO 推荐角色
type RoleDTO struct {
	Title            string   `json:"title" binding:"required"`
	Responsibilities []string `json:"responsibilities"`
	RequiredSkills   []string `json:"required_skills"`
}

// ConfirmRolesRequest 确认角色，列表不能为空
type ConfirmRolesRequest struct {
	Roles []RoleDTO `json:"roles" binding:"required,min=1,dive"`
}

// ToEntity 转为领域对象
func (r *ConfirmRolesRequest) ToEntity() []entity.RecommendedRole {
	out := make([]entity.RecommendedRole, 0, len(r.Roles))
	for _, role := range r.Roles {
		out = append(out, entity.RecommendedRole{
			Title:            role.Title,
			Responsibilities: nonNil(role.Responsibilities),
			RequiredSkills:   nonNil(role.RequiredSkills),
		})
	}
	return out
}

// TemplateRequest 选择模板；两项都缺省时使用默认模板
type TemplateRequest struct {
	Structure   string   `json:"structure"`
	Conventions []string `json:"conventions"`
}

// ToEntity 校验结构与约定是否在目录中
func (r *TemplateRequest) ToEntity() (entity.TemplateChoice, error) {
	if r.Structure == "" && r.Conventions == nil {
		return entity.DefaultTemplateChoice(), nil
	}
	if r.Structure == "" {
		r.Structure = string(entity.DefaultTemplateChoice().Structure)
	}
	return entity.NewTemplateChoice(r.Structure, r.Conventions)
}

// TeamDTO 团队信息
type TeamDTO struct {
	Name        string   `json:"name"`
	Goal        string   `json:"goal"`
	TechStack   []string `json:"tech_stack"`
	Description string   `json:"description"`
}

// TemplateDTO 模板选择
type TemplateDTO struct {
	Structure   string   `json:"structure"`
	Conventions []string `json:"conventions"`
}

// ScaffoldFileDTO 脚手架文件
type ScaffoldFileDTO struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ScaffoldDTO 前端或后端脚手架
type ScaffoldDTO struct {
	Directory string            `json:"directory"`
	Files     []ScaffoldFileDTO `json:"files"`
}

// DatabaseDTO 数据库 DDL
type DatabaseDTO struct {
	Schema string `json:"schema"`
}

// TechSpecDTO 技术蓝图
type TechSpecDTO struct {
	Backend  ScaffoldDTO `json:"backend"`
	Frontend ScaffoldDTO `json:"frontend"`
	Database DatabaseDTO `json:"database"`
}

// BlueprintResponse 最终项目蓝图
type BlueprintResponse struct {
	Team     TeamDTO     `json:"team"`
	Roles    []RoleDTO   `json:"roles"`
	Template TemplateDTO `json:"template"`
	TechSpec TechSpecDTO `json:"tech_spec"`
}

// SessionResponse 会话快照
type SessionResponse struct {
	ID                  string             `json:"id"`
	Step                string             `json:"step"`
	StepNumber          int                `json:"step_number"`
	Generating          bool               `json:"generating"`
	GenerationStartedAt string             `json:"generation_started_at,omitempty"`
	Team                *TeamDTO           `json:"team,omitempty"`
	Roles               []RoleDTO          `json:"roles,omitempty"`
	Suggestions         []RoleDTO          `json:"suggestions,omitempty"`
	Template            *TemplateDTO       `json:"template,omitempty"`
	Blueprint           *BlueprintResponse `json:"blueprint,omitempty"`
	CreatedAt           string             `json:"created_at"`
	UpdatedAt           string             `json:"updated_at"`
}

// RoleRecommendationResponse 角色推荐结果，失败时为空列表
type RoleRecommendationResponse struct {
	Roles []RoleDTO `json:"roles"`
}

// TabResponse 仪表盘单个标签页
type TabResponse struct {
	Tab  string `json:"tab"`
	Data any    `json:"data"`
}

// ToSessionResponse 转换会话快照
func ToSessionResponse(s *entity.WizardSession) *SessionResponse {
	if s == nil {
		return nil
	}
	st := s.State
	resp := &SessionResponse{
		ID:          s.ID,
		Step:        string(st.Step),
		StepNumber:  st.Step.Number(),
		Generating:  st.Generating,
		Suggestions: toRoleDTOsOmitEmpty(s.Suggestions),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
	if st.GenerationStartedAt != nil {
		resp.GenerationStartedAt = st.GenerationStartedAt.Format(time.RFC3339)
	}
	if st.Team != nil {
		t := ToTeamDTO(*st.Team)
		resp.Team = &t
	}
	if st.Roles != nil {
		resp.Roles = ToRoleDTOs(st.Roles)
	}
	if st.Template != nil {
		t := ToTemplateDTO(*st.Template)
		resp.Template = &t
	}
	if st.Blueprint != nil {
		resp.Blueprint = ToBlueprintResponse(st.Blueprint)
	}
	return resp
}

// ToBlueprintResponse 转换项目蓝图
func ToBlueprintResponse(bp *entity.ProjectBlueprint) *BlueprintResponse {
	if bp == nil {
		return nil
	}
	return &BlueprintResponse{
		Team:     ToTeamDTO(bp.Team),
		Roles:    ToRoleDTOs(bp.Roles),
		Template: ToTemplateDTO(bp.Template),
		TechSpec: TechSpecDTO{
			Backend:  ToScaffoldDTO(bp.TechSpec.Backend),
			Frontend: ToScaffoldDTO(bp.TechSpec.Frontend),
			Database: DatabaseDTO{Schema: bp.TechSpec.Database.Schema},
		},
	}
}

// ToTabResponse 转换标签页数据
func ToTabResponse(tab entity.DashboardTab, data any) *TabResponse {
	resp := &TabResponse{Tab: string(tab), Data: data}
	switch v := data.(type) {
	case []entity.RecommendedRole:
		resp.Data = ToRoleDTOs(v)
	case entity.Scaffold:
		resp.Data = ToScaffoldDTO(v)
	case entity.DatabaseSpec:
		resp.Data = DatabaseDTO{Schema: v.Schema}
	}
	return resp
}

func ToTeamDTO(t entity.TeamData) TeamDTO {
	return TeamDTO{
		Name:        t.Name,
		Goal:        t.Goal,
		TechStack:   nonNil(t.TechStack),
		Description: t.Description,
	}
}

func ToTemplateDTO(t entity.TemplateChoice) TemplateDTO {
	return TemplateDTO{Structure: string(t.Structure), Conventions: nonNil(t.Conventions)}
}

func ToRoleDTOs(roles []entity.RecommendedRole) []RoleDTO {
	out := make([]RoleDTO, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleDTO{
			Title:            r.Title,
			Responsibilities: nonNil(r.Responsibilities),
			RequiredSkills:   nonNil(r.RequiredSkills),
		})
	}
	return out
}

func ToScaffoldDTO(s entity.Scaffold) ScaffoldDTO {
	files := make([]ScaffoldFileDTO, 0, len(s.Files))
	for _, f := range s.Files {
		files = append(files, ScaffoldFileDTO{Name: f.Name, Path: f.Path, Content: f.Content})
	}
	return ScaffoldDTO{Directory: s.Directory, Files: files}
}

func toRoleDTOsOmitEmpty(roles []entity.RecommendedRole) []RoleDTO {
	if len(roles) == 0 {
		return nil
	}
	return ToRoleDTOs(roles)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
