// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with SET NX PX. Expiry is enforced by Redis.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) key(sessionID string) string {
	return l.prefix + "enrichment-lock:" + sessionID
}

func (l *RedisLocker) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, fmt.Errorf("lock: invalid ttl %s", ttl)
	}
	token := newToken()
	ok, err := l.client.SetNX(ctx, l.key(sessionID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", sessionID, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, sessionID, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.key(sessionID)}, token).Err()
}

func (l *RedisLocker) ForceRelease(ctx context.Context, sessionID string) error {
	return l.client.Del(ctx, l.key(sessionID)).Err()
}
