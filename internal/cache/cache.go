// Package cache stores finished summaries keyed by post content.
package cache

import (
	"context"
	"time"
)

// Cache is a summary store with per-entry expiry. A miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, summary string, ttl time.Duration) error
	Close() error
}

// Noop never stores anything. Used when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (Noop) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
