package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"quzz-ai-api/internal/domain/repository"
	"quzz-ai-api/pkg/logger"
)

// releaseScript 仅删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionLocker SET NX PX 实现的会话锁，多副本部署时共享
type SessionLocker struct {
	client *Client
	prefix string
}

var _ repository.SessionLocker = (*SessionLocker)(nil)

func NewSessionLocker(client *Client, prefix string) *SessionLocker {
	return &SessionLocker{client: client, prefix: prefix}
}

func (l *SessionLocker) TryLock(ctx context.Context, id string, ttl time.Duration) (func(), bool, error) {
	key := LockKey(l.prefix, id)
	ctx, span := tracer.Start(ctx, "session_lock.TryLock")
	span.SetAttributes(attribute.String("lock.key", key))
	defer span.End()

	token := uuid.NewString()
	ok, err := l.client.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("lock.acquired", ok))
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// 调用方 ctx 可能已取消，释放锁使用独立的短超时
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client.rdb, []string{key}, token).Err(); err != nil && !IsNil(err) {
			logger.Warn(rctx, "failed to release session lock", "key", key, "error", err.Error())
		}
	}
	return release, true, nil
}
