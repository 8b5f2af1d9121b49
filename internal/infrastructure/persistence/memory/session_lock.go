package memory

import (
	"context"
	"sync"
	"time"

	"quzz-ai-api/internal/domain/repository"
)

// SessionLocker 进程内会话锁；ttl 在单进程内无意义，被忽略
type SessionLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ repository.SessionLocker = (*SessionLocker)(nil)

func NewSessionLocker() *SessionLocker {
	return &SessionLocker{held: make(map[string]struct{})}
}

func (l *SessionLocker) TryLock(_ context.Context, id string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[id]; busy {
		return nil, false, nil
	}
	l.held[id] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, id)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
