// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/interfaces/http/handler"
	"quzz-ai-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health  *handler.HealthHandler
	Catalog *handler.CatalogHandler
	Wizard  *handler.WizardHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *Handlers
	limiter  middleware.RateLimiter
}

// New 创建路由器；limiter 为 nil 时不限流
func New(cfg *config.Config, handlers *Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) systemPaths() []string {
	return []string{"/health", "/ready", "/live", r.cfg.Observability.Metrics.Path}
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.systemPaths()...))
	}

	r.engine.Use(middleware.SessionContext())
	r.engine.Use(middleware.AccessLog(r.systemPaths()...))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	RegisterV1Routes(v1, h, middleware.RateLimit(r.cfg.Security.RateLimit, r.cfg.Wizard.KeyPrefix, r.limiter))
}

// RegisterV1Routes 注册 v1 版本路由；limit 作用于触发 LLM 调用的接口
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers, limit gin.HandlerFunc) {
	v1.GET("/catalog", h.Catalog.GetCatalog)

	sessions := v1.Group("/wizard/sessions")
	{
		sessions.POST("", h.Wizard.CreateSession)
		sessions.GET("/:sid", h.Wizard.GetSession)
		sessions.DELETE("/:sid", h.Wizard.DeleteSession)

		sessions.POST("/:sid/start", h.Wizard.Start)
		sessions.POST("/:sid/team", h.Wizard.SubmitTeam)
		sessions.POST("/:sid/role-recommendations", limit, h.Wizard.RecommendRoles)
		sessions.POST("/:sid/roles", h.Wizard.ConfirmRoles)
		sessions.POST("/:sid/template", limit, h.Wizard.SelectTemplate)

		sessions.GET("/:sid/blueprint", h.Wizard.GetBlueprint)
		sessions.GET("/:sid/blueprint/:tab", h.Wizard.GetBlueprintTab)
	}
}
