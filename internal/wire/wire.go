//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"quzz-ai-api/internal/application/gateway"
	"quzz-ai-api/internal/application/wizard"
	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/infrastructure/llm"
	"quzz-ai-api/internal/interfaces/http/handler"
	"quzz-ai-api/internal/interfaces/http/router"
	workflowport "quzz-ai-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		DataSet,
		GatewaySet,
		WizardSet,
		RouterSet,
	)
	return nil, nil, nil
}

// DataSet 会话存储、会话锁、限流与事件发布
var DataSet = wire.NewSet(
	ProvideRedisClient,
	ProvideSessionStore,
	ProvideSessionLocker,
	ProvideRateLimiter,
	ProvideEventPublisher,
)

// GatewaySet LLM 提供商与 AI 网关
var GatewaySet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	gateway.NewGateway,
	wire.Bind(new(wizard.Gateway), new(*gateway.Gateway)),
)

// WizardSet 向导会话服务
var WizardSet = wire.NewSet(
	wizard.ServiceOptionsFromConfig,
	wizard.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewCatalogHandler,
	handler.NewWizardHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
