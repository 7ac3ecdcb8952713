package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ent0n29/medmemory/internal/memory"
)

func testMetrics(prefix string) *Metrics {
	return NewMetrics(prefix + "_" + time.Now().Format("150405") + "_" + time.Now().Format("000000000"))
}

func TestInstrumentBackendCountsOps(t *testing.T) {
	m := testMetrics("test_obs_ops")
	b := InstrumentBackend(memory.NewInMemoryBackend(), m)
	ctx := context.Background()

	_ = b.Append(ctx, "k", "v")
	_ = b.Append(ctx, "k", "v")
	_, _ = b.Range(ctx, "k", 0, -1)

	if got := testutil.ToFloat64(m.BackendOps.WithLabelValues("append", "ok")); got != 2 {
		t.Fatalf("append ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BackendOps.WithLabelValues("range", "ok")); got != 1 {
		t.Fatalf("range ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DegradedMode); got != 0 {
		t.Fatalf("DegradedMode = %v, want 0", got)
	}

	snap := m.SnapshotBackendLatency()
	if len(snap.Ops) != 2 {
		t.Fatalf("len(Ops) = %d, want 2", len(snap.Ops))
	}
}

func TestInstrumentBackendFlagsDegraded(t *testing.T) {
	m := testMetrics("test_obs_degraded")
	b := InstrumentBackend(memory.NewNullBackend(), m)
	if got := testutil.ToFloat64(m.DegradedMode); got != 1 {
		t.Fatalf("DegradedMode = %v, want 1", got)
	}
	if !memory.Degraded(b) {
		t.Fatalf("Degraded() = false through instrumentation")
	}
}
