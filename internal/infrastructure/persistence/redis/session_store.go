package redis

import (
	"context"
	"time"

	"quzz-ai-api/internal/domain/entity"
	"quzz-ai-api/internal/domain/repository"
	"quzz-ai-api/pkg/metrics"
)

const backendName = "redis"

// SessionStore 以 JSON 存储向导会话，过期由 Redis TTL 负责
type SessionStore struct {
	cache  *Cache
	prefix string
}

var _ repository.WizardSessionRepository = (*SessionStore)(nil)

// NewSessionStore prefix 形如 "quzz:wizard"
func NewSessionStore(cache *Cache, prefix string) *SessionStore {
	return &SessionStore{cache: cache, prefix: prefix}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*entity.WizardSession, error) {
	var sess entity.WizardSession
	if err := s.cache.GetJSON(ctx, SessionKey(s.prefix, id), &sess); err != nil {
		if IsNil(err) {
			metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "get", "miss").Inc()
			return nil, repository.ErrNotFound
		}
		metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "get", "error").Inc()
		return nil, err
	}
	metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "get", "ok").Inc()
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *entity.WizardSession, ttl time.Duration) error {
	if err := s.cache.SetJSON(ctx, SessionKey(s.prefix, session.ID), session, ttl); err != nil {
		metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "save", "error").Inc()
		return err
	}
	metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "save", "ok").Inc()
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, SessionKey(s.prefix, id)); err != nil {
		metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "delete", "error").Inc()
		return err
	}
	metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "delete", "ok").Inc()
	return nil
}

// SessionKey 会话数据键
func SessionKey(prefix, id string) string {
	return prefix + ":session:" + id
}

// LockKey 会话锁键
func LockKey(prefix, id string) string {
	return prefix + ":lock:" + id
}
