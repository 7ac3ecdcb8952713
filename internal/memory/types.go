package memory

import (
	"context"
	"errors"
	"time"
)

// ErrWrongType is returned by Append when the key already holds a single value.
var ErrWrongType = errors.New("key holds a value, not a list")

// Backend is the key-value/list capability set shared by the short-term and
// long-term tiers. Reads of a missing key are not errors: Get reports ok=false
// and Range returns an empty slice.
//
// Range and Trim use inclusive bounds where negative indices count from the
// tail (-1 is the last element).
//
// A key holds either a single value or a list. Set replaces whatever the key
// held; Append on a key holding a value fails with ErrWrongType.
type Backend interface {
	Name() string
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	Append(ctx context.Context, key, value string) error
	Trim(ctx context.Context, key string, start, stop int64) error
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Ping(ctx context.Context) bool
	Close() error
}

// Backend names reported by Name.
const (
	BackendNull     = "null"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendInMemory = "in-memory"
)

// Degraded reports whether b is the no-op substitute installed when the real
// store could not be reached.
func Degraded(b Backend) bool {
	return b == nil || b.Name() == BackendNull
}

// normalizeRange resolves inclusive, possibly negative bounds against a list of
// length n. ok is false when the resolved range is empty.
func normalizeRange(start, stop, n int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
