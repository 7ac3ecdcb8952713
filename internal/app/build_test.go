package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/ent0n29/medmemory/internal/config"
	"github.com/ent0n29/medmemory/internal/memory"
)

func testConfig(prefix, backendURL string) config.Config {
	return config.Config{
		MetricsNamespace:     prefix + "_" + time.Now().Format("150405") + "_" + time.Now().Format("000000000"),
		MemoryBackendURL:     backendURL,
		MemoryConnectTimeout: time.Second,
		MemoryOpTimeout:      time.Second,
		STMWindow:            3,
	}
}

func TestBuildWithoutBackendRunsDegraded(t *testing.T) {
	res, err := Build(context.Background(), testConfig("test_app_degraded", ""), zerolog.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer res.Cleanup()

	if !memory.Degraded(res.Backend) {
		t.Fatalf("backend = %s, want null", res.Backend.Name())
	}
	ctx := context.Background()
	if err := res.ShortTerm.Add(ctx, "p", "d", "c", memory.RoleUser, "hello"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if h, err := res.ShortTerm.History(ctx, "p", "d", "c"); err != nil || len(h) != 0 {
		t.Fatalf("History() = %v %v, want empty", h, err)
	}
}

func TestBuildWithRedisSharesBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	res, err := Build(context.Background(), testConfig("test_app_redis", "redis://"+mr.Addr()), zerolog.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer res.Cleanup()

	ctx := context.Background()
	for _, c := range []string{"1", "2", "3", "4"} {
		if err := res.ShortTerm.Add(ctx, "p", "d", "c", memory.RoleUser, c); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	items, err := mr.List("stm:p:d:c")
	if err != nil {
		t.Fatalf("miniredis List() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("stored %d entries, want window of 3", len(items))
	}

	if _, err := res.LongTerm.Update(ctx, "p", memory.Record{"age": 40}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !mr.Exists("ltm:p") {
		t.Fatalf("ltm:p not written to redis")
	}
}
