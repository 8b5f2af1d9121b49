package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/domain/entity"
	"quzz-ai-api/internal/domain/repository"
	llmctx "quzz-ai-api/internal/domain/service"
	"quzz-ai-api/pkg/logger"
	"quzz-ai-api/pkg/metrics"
	"quzz-ai-api/pkg/tracer"
)

// Gateway AI 网关端口
type Gateway interface {
	BlueprintGenerator
	RecommendRoles(ctx context.Context, team entity.TeamData) []entity.RecommendedRole
}

// EventPublisher 向导事件出口
type EventPublisher interface {
	PublishWizardCompleted(ctx context.Context, session *entity.WizardSession) error
}

// ServiceOptions 会话服务参数
type ServiceOptions struct {
	SessionTTL           time.Duration
	StaleGenerationAfter time.Duration
	// LockTTL 分布式锁的兜底过期时间，需长于一次蓝图生成
	LockTTL time.Duration
}

// ServiceOptionsFromConfig 读取 wizard 与 gateway 配置段
func ServiceOptionsFromConfig(cfg *config.Config) ServiceOptions {
	return ServiceOptions{
		SessionTTL:           cfg.Wizard.SessionTTL,
		StaleGenerationAfter: cfg.Wizard.StaleGenerationAfter,
		LockTTL:              cfg.Gateway.BlueprintTimeout + 30*time.Second,
	}
}

// Service 管理互相独立的向导会话
type Service struct {
	repo      repository.WizardSessionRepository
	locker    repository.SessionLocker
	gateway   Gateway
	publisher EventPublisher
	opts      ServiceOptions

	roleCalls singleflight.Group
	now       func() time.Time
}

// NewService publisher 可以为 nil
func NewService(repo repository.WizardSessionRepository, locker repository.SessionLocker, gateway Gateway, publisher EventPublisher, opts ServiceOptions) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	return &Service{
		repo:      repo,
		locker:    locker,
		gateway:   gateway,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

// CreateSession 新会话处于 LANDING
func (s *Service) CreateSession(ctx context.Context) (*entity.WizardSession, error) {
	sess := entity.NewWizardSession(uuid.NewString(), s.now().UTC())
	if err := s.repo.Save(ctx, sess, s.opts.SessionTTL); err != nil {
		return nil, err
	}
	metrics.WizardSessionsCreated.Inc()
	logger.Info(logger.WithContext(ctx, logger.SessionIDKey, sess.ID), "wizard session created")
	return sess.Clone(), nil
}

// Get 读取会话，遗留的 generating 标记会被清除
func (s *Service) Get(ctx context.Context, id string) (*entity.WizardSession, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete 结束会话
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Start LANDING → CREATE_TEAM
func (s *Service) Start(ctx context.Context, id string) (*entity.WizardSession, error) {
	return s.mutate(ctx, id, "start", func(ctx context.Context, m *Machine) error {
		return m.Start(ctx)
	})
}

// SubmitTeam CREATE_TEAM → ROLE_RECO
func (s *Service) SubmitTeam(ctx context.Context, id string, team entity.TeamData) (*entity.WizardSession, error) {
	return s.mutate(ctx, id, "submit_team", func(ctx context.Context, m *Machine) error {
		return m.SubmitTeam(ctx, team)
	})
}

// ConfirmRoles ROLE_RECO → TEMPLATE
func (s *Service) ConfirmRoles(ctx context.Context, id string, roles []entity.RecommendedRole) (*entity.WizardSession, error) {
	return s.mutate(ctx, id, "confirm_roles", func(ctx context.Context, m *Machine) error {
		return m.ConfirmRoles(ctx, roles)
	})
}

// SelectTemplate TEMPLATE → DASHBOARD，生成失败时停留在 TEMPLATE
func (s *Service) SelectTemplate(ctx context.Context, id string, choice entity.TemplateChoice) (*entity.WizardSession, error) {
	sess, err := s.mutate(ctx, id, "select_template", func(ctx context.Context, m *Machine) error {
		return m.SelectTemplate(ctx, choice)
	})
	if err != nil {
		return nil, err
	}
	s.publishCompleted(ctx, sess)
	return sess, nil
}

// RecommendRoles 仅在 ROLE_RECO 可用，不改变步骤。
// 同一会话的并发请求合并为一次网关调用，结果保存在会话上供读取。
func (s *Service) RecommendRoles(ctx context.Context, id string) ([]entity.RecommendedRole, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State.Step != entity.StepRoleReco || sess.State.Team == nil {
		metrics.WizardTransitionsTotal.WithLabelValues("recommend_roles", "rejected").Inc()
		return nil, ErrInvalidTransition.WithDetail("recommendRoles not allowed at " + string(sess.State.Step))
	}

	team := sess.State.Team.Clone()
	v, _, _ := s.roleCalls.Do(id, func() (any, error) {
		callCtx := llmctx.WithSessionID(context.WithoutCancel(ctx), id)
		return s.gateway.RecommendRoles(callCtx, team), nil
	})
	roles := entity.CloneRoles(v.([]entity.RecommendedRole))
	if roles == nil {
		roles = []entity.RecommendedRole{}
	}

	s.storeSuggestions(ctx, id, roles)
	metrics.WizardTransitionsTotal.WithLabelValues("recommend_roles", "ok").Inc()
	return roles, nil
}

// Blueprint 仅在 DASHBOARD 可用
func (s *Service) Blueprint(ctx context.Context, id string) (*entity.ProjectBlueprint, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State.Step != entity.StepDashboard || sess.State.Blueprint == nil {
		return nil, ErrBlueprintNotReady
	}
	bp := sess.State.Blueprint.Clone()
	return &bp, nil
}

// storeSuggestions 会话正忙或已离开 ROLE_RECO 时放弃写入
func (s *Service) storeSuggestions(ctx context.Context, id string, roles []entity.RecommendedRole) {
	release, ok, err := s.locker.TryLock(ctx, id, s.opts.LockTTL)
	if err != nil || !ok {
		logger.Debug(ctx, "skip storing role suggestions, session busy", "session_id", id)
		return
	}
	defer release()

	sess, err := s.repo.Get(ctx, id)
	if err != nil || sess.State.Step != entity.StepRoleReco {
		return
	}
	sess.Suggestions = entity.CloneRoles(roles)
	sess.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, sess, s.opts.SessionTTL); err != nil {
		logger.Warn(ctx, "failed to store role suggestions", "session_id", id, "error", err.Error())
	}
}

// mutate 在会话锁内恢复状态机、执行转换并保存。
// 锁已被持有时立即返回 ErrSessionBusy，不在挂起的生成后排队。
func (s *Service) mutate(ctx context.Context, id, transition string, fn func(context.Context, *Machine) error) (_ *entity.WizardSession, err error) {
	ctx = logger.WithContext(ctx, logger.SessionIDKey, id)
	ctx, span := tracer.StartSession(ctx, "wizard."+transition, id)
	defer func() { tracer.End(span, err) }()

	release, ok, err := s.locker.TryLock(ctx, id, s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.WizardTransitionsTotal.WithLabelValues(transition, "busy").Inc()
		return nil, ErrSessionBusy
	}
	defer release()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// 保存不随请求取消；saveErr 为最后一次保存的结果
	prev := sess.State.Clone()
	var saveErr error
	persist := func(ctx context.Context, state entity.WizardState) {
		sess.State = state
		sess.UpdatedAt = s.now().UTC()
		saveErr = s.repo.Save(context.WithoutCancel(ctx), sess, s.opts.SessionTTL)
		if saveErr != nil {
			logger.Error(ctx, "failed to persist wizard state", saveErr, "step", string(state.Step))
		}
	}
	m, err := Restore(sess.State, s.gateway, WithObserver(persist), WithClock(s.now))
	if err != nil {
		return nil, err
	}

	callCtx := llmctx.WithSessionID(ctx, id)
	if err := fn(callCtx, m); err != nil {
		status := "failed"
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrInvalidTeam) || errors.Is(err, ErrGenerationInProgress) {
			status = "rejected"
		}
		metrics.WizardTransitionsTotal.WithLabelValues(transition, status).Inc()
		logger.Warn(ctx, "wizard transition failed", "transition", transition, "error", err.Error())
		return nil, err
	}

	if saveErr != nil {
		// 转换未落盘时写回转换前的状态
		sess.State = prev
		if err := s.repo.Save(context.WithoutCancel(ctx), sess, s.opts.SessionTTL); err != nil {
			logger.Warn(ctx, "failed to restore wizard state", "error", err.Error())
		}
		metrics.WizardTransitionsTotal.WithLabelValues(transition, "failed").Inc()
		return nil, ErrPersistFailed.WithDetail(transition).WithError(saveErr)
	}

	metrics.WizardTransitionsTotal.WithLabelValues(transition, "ok").Inc()
	logger.Info(ctx, "wizard transition", "transition", transition, "step", string(m.Step()))
	return sess.Clone(), nil
}

// load 读取会话并清除超时遗留的 generating 标记
func (s *Service) load(ctx context.Context, id string) (*entity.WizardSession, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound.WithDetail(id)
		}
		return nil, err
	}
	if s.isStale(sess.State) {
		logger.Warn(ctx, "clearing stale generating flag", "session_id", id)
		sess.State.Generating = false
		sess.State.GenerationStartedAt = nil
		if err := s.repo.Save(ctx, sess, s.opts.SessionTTL); err != nil {
			logger.Warn(ctx, "failed to save cleared session", "session_id", id, "error", err.Error())
		}
	}
	return sess, nil
}

func (s *Service) isStale(st entity.WizardState) bool {
	if !st.Generating || s.opts.StaleGenerationAfter <= 0 {
		return false
	}
	if st.GenerationStartedAt == nil {
		return true
	}
	return s.now().Sub(*st.GenerationStartedAt) > s.opts.StaleGenerationAfter
}

func (s *Service) publishCompleted(ctx context.Context, sess *entity.WizardSession) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishWizardCompleted(ctx, sess); err != nil {
		logger.Warn(ctx, "failed to publish wizard completed event", "session_id", sess.ID, "error", err.Error())
	}
}
