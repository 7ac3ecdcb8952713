package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisBackendUsesNativeLists(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	b, err := NewRedisBackend(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisBackend() error = %v", err)
	}
	defer b.Close()

	if err := b.Append(ctx, "stm:p:d:c", `{"role":"user"}`); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	items, err := mr.List("stm:p:d:c")
	if err != nil {
		t.Fatalf("miniredis List() error = %v", err)
	}
	if len(items) != 1 || items[0] != `{"role":"user"}` {
		t.Fatalf("stored list = %v", items)
	}
}

func TestRedisBackendExpire(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	b, err := NewRedisBackend(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisBackend() error = %v", err)
	}
	defer b.Close()

	_ = b.Set(ctx, "ltm:p1", "{}")
	if err := b.Expire(ctx, "ltm:p1", time.Minute); err != nil {
		t.Fatalf("Expire() error = %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := b.Get(ctx, "ltm:p1"); ok {
		t.Fatalf("Get() after ttl found value")
	}
}

func TestNewRedisBackendRejectsBadURL(t *testing.T) {
	if _, err := NewRedisBackend(context.Background(), "redis://%%%"); err == nil {
		t.Fatalf("NewRedisBackend() error = nil, want parse error")
	}
}

func TestRedisBackendOperationalErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	b, err := NewRedisBackend(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisBackend() error = %v", err)
	}
	defer b.Close()

	mr.Close()
	if err := b.Set(ctx, "k", "v"); err == nil {
		t.Fatalf("Set() against stopped server error = nil, want error")
	}
	if b.Ping(ctx) {
		t.Fatalf("Ping() against stopped server = true")
	}
}
