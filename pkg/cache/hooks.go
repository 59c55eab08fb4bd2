package cache

import (
	"context"
	"time"

	"github.com/matzehuels/trackgrid/pkg/observability"
)

// hooked reports cache traffic to the observability hooks registered at the
// time of each call.
type hooked struct {
	inner  Cache
	maxTTL time.Duration
}

// WithHooks wraps c so hits, misses and writes are reported to
// observability.Cache(). Wrapping twice has no additional effect.
func WithHooks(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	if h, ok := c.(*hooked); ok {
		return h
	}
	return &hooked{inner: c}
}

// Unwrap returns the backend behind a WithHooks wrapper, or c itself.
func Unwrap(c Cache) Cache {
	if h, ok := c.(*hooked); ok {
		return h.inner
	}
	return c
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := h.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyKind(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyKind(key))
		}
	}
	return data, hit, err
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if h.maxTTL > 0 && (ttl <= 0 || ttl > h.maxTTL) {
		ttl = h.maxTTL
	}
	if err := h.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyKind(key), len(data))
	return nil
}

func (h *hooked) Delete(ctx context.Context, key string) error {
	return h.inner.Delete(ctx, key)
}

// Clear forwards to the backend when it supports clearing.
func (h *hooked) Clear(ctx context.Context) error {
	if c, ok := h.inner.(Clearer); ok {
		return c.Clear(ctx)
	}
	return nil
}

func (h *hooked) Close() error {
	return h.inner.Close()
}
