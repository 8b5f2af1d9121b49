// Package wizard 实现向导状态机与会话服务
package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quzz-ai-api/internal/domain/entity"
)

// BlueprintGenerator 技术蓝图生成端口
type BlueprintGenerator interface {
	GenerateBlueprint(ctx context.Context, team entity.TeamData) (*entity.TechnicalBlueprint, error)
}

// Observer 每次状态变化后收到快照（包括进入与退出 generating）
type Observer func(ctx context.Context, state entity.WizardState)

// MachineOption 状态机选项
type MachineOption func(*Machine)

// WithObserver 设置状态观察者
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) { m.observer = o }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) { m.now = now }
}

// Machine LANDING → CREATE_TEAM → ROLE_RECO → TEMPLATE → DASHBOARD，
// 只能按顺序前进一步，错误步骤上的调用不改变任何状态。
type Machine struct {
	mu       sync.Mutex
	state    entity.WizardState
	gen      BlueprintGenerator
	observer Observer
	now      func() time.Time
}

// NewMachine 从 LANDING 开始
func NewMachine(gen BlueprintGenerator, opts ...MachineOption) *Machine {
	m := &Machine{state: entity.NewWizardState(), gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore 从快照恢复，快照需满足各步骤的数据约束
func Restore(state entity.WizardState, gen BlueprintGenerator, opts ...MachineOption) (*Machine, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	m := NewMachine(gen, opts...)
	m.state = state.Clone()
	return m, nil
}

// checkState 蓝图存在当且仅当处于 DASHBOARD
func checkState(s entity.WizardState) error {
	if !s.Step.Valid() {
		return ErrInvalidState.WithDetail(fmt.Sprintf("unknown step %q", s.Step))
	}
	n := s.Step.Number()
	switch {
	case (s.Blueprint != nil) != (s.Step == entity.StepDashboard):
		return ErrInvalidState.WithDetail("blueprint must be present exactly at DASHBOARD")
	case n >= entity.StepRoleReco.Number() && s.Team == nil:
		return ErrInvalidState.WithDetail("team missing after CREATE_TEAM")
	case n >= entity.StepTemplate.Number() && s.Roles == nil:
		return ErrInvalidState.WithDetail("roles missing after ROLE_RECO")
	case s.Generating && s.Step != entity.StepTemplate:
		return ErrInvalidState.WithDetail("generating outside TEMPLATE")
	}
	return nil
}

// Snapshot 只读深拷贝
func (m *Machine) Snapshot() entity.WizardState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Step 当前步骤
func (m *Machine) Step() entity.Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Step
}

// Start LANDING → CREATE_TEAM
func (m *Machine) Start(ctx context.Context) error {
	return m.advance(ctx, "start", entity.StepLanding, func(*entity.WizardState) {})
}

// SubmitTeam CREATE_TEAM → ROLE_RECO，原样保存 team 的深拷贝
func (m *Machine) SubmitTeam(ctx context.Context, team entity.TeamData) error {
	team = team.Clone()
	if err := team.Validate(); err != nil {
		if m.Step() != entity.StepCreateTeam {
			return m.invalid("submitTeam")
		}
		return ErrInvalidTeam.WithDetail(err.Error()).WithError(err)
	}
	return m.advance(ctx, "submitTeam", entity.StepCreateTeam, func(s *entity.WizardState) {
		s.Team = &team
	})
}

// ConfirmRoles ROLE_RECO → TEMPLATE，按原样保存角色列表（可以为空）
func (m *Machine) ConfirmRoles(ctx context.Context, roles []entity.RecommendedRole) error {
	cp := entity.CloneRoles(roles)
	if cp == nil {
		cp = []entity.RecommendedRole{}
	}
	return m.advance(ctx, "confirmRoles", entity.StepRoleReco, func(s *entity.WizardState) {
		s.Roles = cp
	})
}

// SelectTemplate 在 TEMPLATE 步骤调用一次蓝图生成。
// 成功则组装 ProjectBlueprint 并进入 DASHBOARD；失败则清除 generating、停留在 TEMPLATE 并返回错误。
func (m *Machine) SelectTemplate(ctx context.Context, choice entity.TemplateChoice) error {
	m.mu.Lock()
	if m.state.Step != entity.StepTemplate {
		m.mu.Unlock()
		return m.invalid("selectTemplate")
	}
	if m.state.Generating {
		m.mu.Unlock()
		return ErrGenerationInProgress
	}
	if m.gen == nil {
		m.mu.Unlock()
		return ErrInvalidState.WithDetail("blueprint generator not configured")
	}
	started := m.now().UTC()
	m.state.Generating = true
	m.state.GenerationStartedAt = &started
	team := m.state.Team.Clone()
	pending := m.state.Clone()
	m.mu.Unlock()

	m.notify(ctx, pending)

	techSpec, err := m.gen.GenerateBlueprint(ctx, team)
	if err == nil && techSpec == nil {
		err = ErrInvalidState.WithDetail("generator returned no blueprint")
	}

	m.mu.Lock()
	m.state.Generating = false
	m.state.GenerationStartedAt = nil
	if err != nil {
		snap := m.state.Clone()
		m.mu.Unlock()
		m.notify(ctx, snap)
		return err
	}
	tpl := choice.Clone()
	m.state.Template = &tpl
	m.state.Blueprint = &entity.ProjectBlueprint{
		Team:     team,
		Roles:    entity.CloneRoles(m.state.Roles),
		Template: tpl.Clone(),
		TechSpec: techSpec.Clone(),
	}
	m.state.Step = entity.StepDashboard
	snap := m.state.Clone()
	m.mu.Unlock()

	m.notify(ctx, snap)
	return nil
}

// advance 在 from 步骤上执行 apply 并前进一步
func (m *Machine) advance(ctx context.Context, op string, from entity.Step, apply func(*entity.WizardState)) error {
	m.mu.Lock()
	if m.state.Step != from {
		m.mu.Unlock()
		return m.invalid(op)
	}
	next, _ := from.Next()
	apply(&m.state)
	m.state.Step = next
	snap := m.state.Clone()
	m.mu.Unlock()

	m.notify(ctx, snap)
	return nil
}

func (m *Machine) invalid(op string) error {
	return ErrInvalidTransition.WithDetail(fmt.Sprintf("%s not allowed at %s", op, m.Step()))
}

func (m *Machine) notify(ctx context.Context, s entity.WizardState) {
	if m.observer != nil {
		m.observer(ctx, s)
	}
}
