package wire

import (
	"context"
	"time"

	"quzz-ai-api/internal/application/wizard"
	"quzz-ai-api/internal/config"
	"quzz-ai-api/internal/domain/repository"
	"quzz-ai-api/internal/infrastructure/messaging"
	"quzz-ai-api/internal/infrastructure/persistence/memory"
	"quzz-ai-api/internal/infrastructure/persistence/redis"
	"quzz-ai-api/internal/interfaces/http/handler"
	"quzz-ai-api/internal/interfaces/http/middleware"
	"quzz-ai-api/pkg/logger"
)

const sweepInterval = time.Minute

// ProvideRedisClient cache.redis.enabled 为 false 时返回 nil
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideSessionStore 按 wizard.session_store 选择内存或 Redis 存储
func ProvideSessionStore(ctx context.Context, cfg *config.Config, client *redis.Client) (repository.WizardSessionRepository, func(), error) {
	if cfg.Wizard.SessionStore == "redis" && client != nil {
		logger.Info(ctx, "wizard sessions stored in redis", "prefix", cfg.Wizard.KeyPrefix)
		return redis.NewSessionStore(redis.NewCache(client), cfg.Wizard.KeyPrefix), func() {}, nil
	}

	store := memory.NewSessionStore()
	sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go store.RunSweeper(sweepCtx, sweepInterval)
	logger.Info(ctx, "wizard sessions stored in memory")
	return store, cancel, nil
}

// ProvideSessionLocker 与会话存储使用同一后端
func ProvideSessionLocker(cfg *config.Config, client *redis.Client) repository.SessionLocker {
	if cfg.Wizard.SessionStore == "redis" && client != nil {
		return redis.NewSessionLocker(client, cfg.Wizard.KeyPrefix)
	}
	return memory.NewSessionLocker()
}

// ProvideRateLimiter 未启用 redis 时不限流
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideEventPublisher messaging.enabled 为 false 时不发布事件
func ProvideEventPublisher(cfg *config.Config, client *redis.Client) wizard.EventPublisher {
	if !cfg.Messaging.Enabled || client == nil {
		return nil
	}
	stream := cfg.Messaging.RedisStream
	return messaging.NewProducer(client.Redis(), stream.Stream, stream.MaxLen)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(client, cfg.App.Version)
}
