// Package gateway 封装对外部生成式模型的两次调用：角色推荐与技术蓝图
package gateway

import (
	"context"
	"errors"
	"time"

	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/domain/entity"
	workflowchain "quzz-ai-api/internal/workflow/chain"
	wfmodel "quzz-ai-api/internal/workflow/model"
	wfnode "quzz-ai-api/internal/workflow/node"
	workflowport "quzz-ai-api/internal/workflow/port"
	apperrors "quzz-ai-api/pkg/errors"
	"quzz-ai-api/pkg/logger"
	"quzz-ai-api/pkg/metrics"
)

// ErrBlueprintGenerationFailed 蓝图生成的唯一失败类型，errors.Is 按错误码匹配
var ErrBlueprintGenerationFailed = apperrors.ErrGenerationFailed

const rawLogLimit = 512

// structuredInvoker 即 *workflowchain.StructuredChain
type structuredInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.StructuredGenerateInput) (*wfmodel.StructuredGenerateOutput, error)
}

// Options 网关参数
type Options struct {
	Provider         string
	RoleTimeout      time.Duration
	BlueprintTimeout time.Duration
	RolePolicy       RolePolicy
}

// OptionsFromConfig 读取 gateway 配置段
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Provider:         cfg.Gateway.Provider,
		RoleTimeout:      cfg.Gateway.RoleTimeout,
		BlueprintTimeout: cfg.Gateway.BlueprintTimeout,
		RolePolicy:       RolePolicyFromConfig(cfg.Gateway.RolePolicy),
	}
}

// Gateway 无会话状态，可被多个会话并发使用
type Gateway struct {
	roles     structuredInvoker
	blueprint structuredInvoker
	opts      Options
}

// NewGateway 基于 ChatModel 工厂构建两条结构化输出链
func NewGateway(factory workflowport.ChatModelFactory, cfg *config.Config) *Gateway {
	return newGateway(
		workflowchain.NewRoleRecommendationChain(factory),
		workflowchain.NewTechnicalBlueprintChain(factory),
		OptionsFromConfig(cfg),
	)
}

func newGateway(roles, blueprint structuredInvoker, opts Options) *Gateway {
	if opts.RolePolicy.Mode == "" {
		opts.RolePolicy.Mode = PolicyOff
	}
	return &Gateway{roles: roles, blueprint: blueprint, opts: opts}
}

// RecommendRoles 任何失败都只记录日志并返回空切片（非 nil），从不返回错误
func (g *Gateway) RecommendRoles(ctx context.Context, team entity.TeamData) []entity.RecommendedRole {
	ctx, cancel := withTimeout(ctx, g.opts.RoleTimeout)
	defer cancel()

	out, err := g.roles.Invoke(ctx, g.input(team))
	if err != nil {
		logger.Warn(ctx, "role recommendation failed, returning empty list",
			"error", err.Error(),
			"timeout", wfnode.IsTimeoutError(err),
		)
		metrics.RoleRecommendationTotal.WithLabelValues("degraded").Inc()
		return []entity.RecommendedRole{}
	}

	roles, dropped, err := ParseRoles(out.Raw)
	if err != nil {
		logger.Warn(ctx, "role recommendation response rejected",
			"error", err.Error(),
			"raw", wfnode.TruncateByRunes(out.Raw, rawLogLimit),
		)
		metrics.RoleRecommendationTotal.WithLabelValues("degraded").Inc()
		return []entity.RecommendedRole{}
	}
	if len(dropped) > 0 {
		logger.Warn(ctx, "dropped malformed role items", "issues", dropped)
	}

	roles, err = g.opts.RolePolicy.Apply(roles)
	if err != nil {
		logger.Warn(ctx, "role recommendation violates role policy",
			"error", err.Error(),
			"mode", string(g.opts.RolePolicy.Mode),
		)
		metrics.RoleRecommendationTotal.WithLabelValues("degraded").Inc()
		return []entity.RecommendedRole{}
	}

	if len(roles) == 0 {
		metrics.RoleRecommendationTotal.WithLabelValues("empty").Inc()
		return []entity.RecommendedRole{}
	}
	metrics.RoleRecommendationTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "role recommendation completed",
		"roles", len(roles),
		"provider", out.Meta.Provider,
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
	)
	return roles
}

// GenerateBlueprint 任何失败都返回 ErrBlueprintGenerationFailed（包裹原因）
func (g *Gateway) GenerateBlueprint(ctx context.Context, team entity.TeamData) (*entity.TechnicalBlueprint, error) {
	start := time.Now()
	defer func() {
		metrics.BlueprintGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := withTimeout(ctx, g.opts.BlueprintTimeout)
	defer cancel()

	out, err := g.blueprint.Invoke(ctx, g.input(team))
	if err != nil {
		outcome := "failed"
		if wfnode.IsTimeoutError(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.BlueprintGenerationTotal.WithLabelValues(outcome).Inc()
		logger.Error(ctx, "blueprint generation failed", err, "outcome", outcome)
		return nil, ErrBlueprintGenerationFailed.WithError(err)
	}

	bp, err := ParseBlueprint(out.Raw)
	if err != nil {
		metrics.BlueprintGenerationTotal.WithLabelValues("failed").Inc()
		logger.Error(ctx, "blueprint response rejected", err,
			"raw", wfnode.TruncateByRunes(out.Raw, rawLogLimit),
		)
		return nil, ErrBlueprintGenerationFailed.WithDetail(err.Error()).WithError(err)
	}

	metrics.BlueprintGenerationTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "blueprint generation completed",
		"backend_files", len(bp.Backend.Files),
		"frontend_files", len(bp.Frontend.Files),
		"provider", out.Meta.Provider,
		"schema_enforced", out.Meta.SchemaEnforced,
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
	)
	return bp, nil
}

func (g *Gateway) input(team entity.TeamData) *wfmodel.StructuredGenerateInput {
	return &wfmodel.StructuredGenerateInput{
		Vars:     PromptVars(team),
		Provider: g.opts.Provider,
	}
}

// PromptVars 模板变量，技术栈按选择顺序以 ", " 连接
func PromptVars(team entity.TeamData) map[string]any {
	return map[string]any{
		"name":        team.Name,
		"goal":        team.Goal,
		"tech_stack":  team.TechStackLine(),
		"description": team.Description,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
