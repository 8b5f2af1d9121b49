package repository

import (
	"context"
	"time"

	"quzz-ai-api/internal/domain/entity"
)

// WizardSessionRepository 向导会话存储，记录在 TTL 到期后消失
type WizardSessionRepository interface {
	// Get 不存在或已过期返回 ErrNotFound
	Get(ctx context.Context, id string) (*entity.WizardSession, error)
	// Save 写入并刷新 TTL
	Save(ctx context.Context, session *entity.WizardSession, ttl time.Duration) error
	// Delete 删除不存在的会话不报错
	Delete(ctx context.Context, id string) error
}

// SessionLocker 会话级互斥。TryLock 不排队：已被持有时立即返回 ok=false
type SessionLocker interface {
	TryLock(ctx context.Context, id string, ttl time.Duration) (release func(), ok bool, err error)
}
