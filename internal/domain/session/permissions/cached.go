// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package permissions caches OS capture permission probes.
package permissions

import (
	"context"
	"time"

	"github.com/ManuGH/recap/internal/cache"
	"github.com/ManuGH/recap/internal/domain/session/ports"
	"github.com/ManuGH/recap/internal/metrics"
)

// DefaultTTL is how long a probe result is trusted.
const DefaultTTL = 5 * time.Second

// CachedChecker wraps a PermissionChecker with a TTL cache. Probe errors are
// never cached.
type CachedChecker struct {
	inner ports.PermissionChecker
	cache cache.Cache
	ttl   time.Duration
}

var (
	_ ports.PermissionChecker     = (*CachedChecker)(nil)
	_ ports.PermissionInvalidator = (*CachedChecker)(nil)
)

// NewCachedChecker caches results of inner in c for ttl.
func NewCachedChecker(inner ports.PermissionChecker, c cache.Cache, ttl time.Duration) *CachedChecker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedChecker{inner: inner, cache: c, ttl: ttl}
}

func (c *CachedChecker) HasScreenRecordingPermission(ctx context.Context) (bool, error) {
	return c.check(ctx, ports.PermissionScreenRecording, c.inner.HasScreenRecordingPermission)
}

func (c *CachedChecker) HasMicrophonePermission(ctx context.Context) (bool, error) {
	return c.check(ctx, ports.PermissionMicrophone, c.inner.HasMicrophonePermission)
}

// RequestMicrophonePermission always prompts and refreshes the cached value.
func (c *CachedChecker) RequestMicrophonePermission(ctx context.Context) (bool, error) {
	granted, err := c.inner.RequestMicrophonePermission(ctx)
	if err != nil {
		c.Invalidate(ports.PermissionMicrophone)
		return false, err
	}
	c.cache.Set(string(ports.PermissionMicrophone), granted, c.ttl)
	return granted, nil
}

// Invalidate drops the cached value for kind.
func (c *CachedChecker) Invalidate(kind ports.PermissionKind) {
	c.cache.Delete(string(kind))
}

// InvalidateAll drops every cached permission.
func (c *CachedChecker) InvalidateAll() {
	c.cache.Clear()
}

func (c *CachedChecker) check(ctx context.Context, kind ports.PermissionKind, probe func(context.Context) (bool, error)) (bool, error) {
	if v, ok := c.cache.Get(string(kind)); ok {
		if granted, ok := v.(bool); ok {
			metrics.IncPermissionCacheLookup(string(kind), true)
			return granted, nil
		}
	}
	metrics.IncPermissionCacheLookup(string(kind), false)

	granted, err := probe(ctx)
	if err != nil {
		return false, err
	}
	c.cache.Set(string(kind), granted, c.ttl)
	return granted, nil
}
