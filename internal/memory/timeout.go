package memory

import (
	"context"
	"time"
)

type timeoutBackend struct {
	next    Backend
	timeout time.Duration
}

// WithTimeout wraps b so that each call runs under its own deadline. A
// non-positive timeout returns b unchanged.
func WithTimeout(b Backend, timeout time.Duration) Backend {
	if timeout <= 0 {
		return b
	}
	return &timeoutBackend{next: b, timeout: timeout}
}

func (t *timeoutBackend) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

func (t *timeoutBackend) Name() string { return t.next.Name() }

func (t *timeoutBackend) Set(ctx context.Context, key, value string) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Set(ctx, key, value)
}

func (t *timeoutBackend) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Get(ctx, key)
}

func (t *timeoutBackend) Delete(ctx context.Context, key string) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Delete(ctx, key)
}

func (t *timeoutBackend) Append(ctx context.Context, key, value string) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Append(ctx, key, value)
}

func (t *timeoutBackend) Trim(ctx context.Context, key string, start, stop int64) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Trim(ctx, key, start, stop)
}

func (t *timeoutBackend) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Range(ctx, key, start, stop)
}

func (t *timeoutBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Expire(ctx, key, ttl)
}

func (t *timeoutBackend) Ping(ctx context.Context) bool {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Ping(ctx)
}

func (t *timeoutBackend) Close() error { return t.next.Close() }
