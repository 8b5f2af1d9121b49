// Package memory 提供单进程内的会话存储与会话锁
package memory

import (
	"context"
	"sync"
	"time"

	"quzz-ai-api/internal/domain/entity"
	"quzz-ai-api/internal/domain/repository"
	"quzz-ai-api/pkg/metrics"
)

const backendName = "memory"

type sessionEntry struct {
	session   *entity.WizardSession
	expiresAt time.Time
}

// SessionStore 存取时均深拷贝，过期记录在读取或 Sweep 时清除
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]sessionEntry
	now     func() time.Time
}

var _ repository.WizardSessionRepository = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]sessionEntry),
		now:     time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.WizardSession, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		if ok {
			s.mu.Lock()
			if cur, still := s.entries[id]; still && s.expired(cur) {
				delete(s.entries, id)
			}
			s.mu.Unlock()
		}
		metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "get", "miss").Inc()
		return nil, repository.ErrNotFound
	}
	metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "get", "ok").Inc()
	return e.session.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, session *entity.WizardSession, ttl time.Duration) error {
	e := sessionEntry{session: session.Clone()}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[session.ID] = e
	s.mu.Unlock()
	metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "save", "ok").Inc()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	metrics.SessionStoreOpsTotal.WithLabelValues(backendName, "delete", "ok").Inc()
	return nil
}

// Sweep 清除全部过期记录，返回清除数量
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// RunSweeper 周期清理，直到 ctx 结束
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len 当前记录数（含未清理的过期记录）
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *SessionStore) expired(e sessionEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
