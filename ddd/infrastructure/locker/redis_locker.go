package locker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"transcription-service/ddd/domain/gateway"
)

const lockKeyPrefix = "transcription:job-lock:"

// RedisLocker enforces single-flight per media id across worker processes
// sharing one database. The TTL bounds lock leakage after a crashed worker.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) gateway.JobLocker {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context, mediaID string) (bool, error) {
	return l.client.SetNX(ctx, lockKeyPrefix+mediaID, 1, l.ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context, mediaID string) error {
	return l.client.Del(ctx, lockKeyPrefix+mediaID).Err()
}
