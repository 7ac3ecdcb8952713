package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryBackend is a simple in-process store for local/dev use.
type InMemoryBackend struct {
	mu      sync.Mutex
	values  map[string]string
	lists   map[string][]string
	expires map[string]time.Time
	now     func() time.Time
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		values:  make(map[string]string),
		lists:   make(map[string][]string),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *InMemoryBackend) Name() string { return BackendInMemory }

func (b *InMemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropLocked(key)
	b.values[key] = value
	return nil
}

func (b *InMemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *InMemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropLocked(key)
	return nil
}

func (b *InMemoryBackend) Append(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	if _, isValue := b.values[key]; isValue {
		return fmt.Errorf("append %s: %w", key, ErrWrongType)
	}
	b.lists[key] = append(b.lists[key], value)
	return nil
}

func (b *InMemoryBackend) Trim(_ context.Context, key string, start, stop int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	arr := b.lists[key]
	lo, hi, ok := normalizeRange(start, stop, int64(len(arr)))
	if !ok {
		b.dropLocked(key)
		return nil
	}
	kept := make([]string, hi-lo+1)
	copy(kept, arr[lo:hi+1])
	b.lists[key] = kept
	return nil
}

func (b *InMemoryBackend) Range(_ context.Context, key string, start, stop int64) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	arr := b.lists[key]
	lo, hi, ok := normalizeRange(start, stop, int64(len(arr)))
	if !ok {
		return nil, nil
	}
	out := make([]string, hi-lo+1)
	copy(out, arr[lo:hi+1])
	return out, nil
}

func (b *InMemoryBackend) Expire(_ context.Context, key string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	_, isValue := b.values[key]
	_, isList := b.lists[key]
	if !isValue && !isList {
		return nil
	}
	if ttl <= 0 {
		b.dropLocked(key)
		return nil
	}
	b.expires[key] = b.now().Add(ttl)
	return nil
}

func (b *InMemoryBackend) Ping(context.Context) bool { return true }

func (b *InMemoryBackend) Close() error { return nil }

func (b *InMemoryBackend) expireLocked(key string) {
	at, ok := b.expires[key]
	if ok && !b.now().Before(at) {
		b.dropLocked(key)
	}
}

func (b *InMemoryBackend) dropLocked(key string) {
	delete(b.values, key)
	delete(b.lists, key)
	delete(b.expires, key)
}
