// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "perm:", zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, c := setupMiniRedis(t)

	c.Set("microphone", true, 5*time.Second)
	v, ok := c.Get("microphone")
	require.True(t, ok)
	assert.Equal(t, true, v)
	assert.True(t, mr.Exists("perm:microphone"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestRedisCache_Expiration(t *testing.T) {
	mr, c := setupMiniRedis(t)

	c.Set("screen_recording", false, time.Second)
	mr.FastForward(2 * time.Second)

	_, ok := c.Get("screen_recording")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisCache_ClearOnlyOwnPrefix(t *testing.T) {
	mr, c := setupMiniRedis(t)
	require.NoError(t, mr.Set("other:key", "x"))

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()

	assert.False(t, mr.Exists("perm:a"))
	assert.False(t, mr.Exists("perm:b"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCache_Delete(t *testing.T) {
	_, c := setupMiniRedis(t)
	c.Set("a", 1, time.Minute)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	require.NoError(t, c.HealthCheck(context.Background()))
}

func TestDialRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := DialRedisCache(ctx, &redis.Options{Addr: addr, MaxRetries: -1}, "p:", zerolog.Nop())
	require.Error(t, err)
}
