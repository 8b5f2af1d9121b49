package entity

import "time"

// WizardState 向导状态机的可序列化快照
type WizardState struct {
	Step       Step `json:"step"`
	Generating bool `json:"generating"`
	// GenerationStartedAt 仅在 Generating 时有值，用于识别遗留的挂起标记
	GenerationStartedAt *time.Time `json:"generationStartedAt,omitempty"`

	Team      *TeamData         `json:"team,omitempty"`
	Roles     []RecommendedRole `json:"roles"`
	Template  *TemplateChoice   `json:"template,omitempty"`
	Blueprint *ProjectBlueprint `json:"blueprint,omitempty"`
}

// NewWizardState 初始状态为 LANDING
func NewWizardState() WizardState {
	return WizardState{Step: StepLanding}
}

// Clone 深拷贝
func (s WizardState) Clone() WizardState {
	cp := WizardState{
		Step:       s.Step,
		Generating: s.Generating,
		Roles:      CloneRoles(s.Roles),
	}
	if s.GenerationStartedAt != nil {
		t := *s.GenerationStartedAt
		cp.GenerationStartedAt = &t
	}
	if s.Team != nil {
		t := s.Team.Clone()
		cp.Team = &t
	}
	if s.Template != nil {
		t := s.Template.Clone()
		cp.Template = &t
	}
	if s.Blueprint != nil {
		b := s.Blueprint.Clone()
		cp.Blueprint = &b
	}
	return cp
}

// WizardSession 一个独立的向导会话
type WizardSession struct {
	ID    string      `json:"id"`
	State WizardState `json:"state"`
	// Suggestions 最近一次角色推荐结果，仅供读取
	Suggestions []RecommendedRole `json:"suggestions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewWizardSession 创建 LANDING 状态的会话
func NewWizardSession(id string, now time.Time) *WizardSession {
	return &WizardSession{
		ID:        id,
		State:     NewWizardState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone 深拷贝
func (s *WizardSession) Clone() *WizardSession {
	if s == nil {
		return nil
	}
	return &WizardSession{
		ID:          s.ID,
		State:       s.State.Clone(),
		Suggestions: CloneRoles(s.Suggestions),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
