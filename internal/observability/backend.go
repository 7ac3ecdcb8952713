package observability

import (
	"context"
	"time"

	"github.com/ent0n29/medmemory/internal/memory"
)

type instrumentedBackend struct {
	next    memory.Backend
	metrics *Metrics
}

// InstrumentBackend records count, result and latency of every call made
// through b.
func InstrumentBackend(b memory.Backend, m *Metrics) memory.Backend {
	if m == nil {
		return b
	}
	m.SetDegraded(memory.Degraded(b))
	return &instrumentedBackend{next: b, metrics: m}
}

func (i *instrumentedBackend) observe(op string, start time.Time, err error) {
	i.metrics.ObserveBackendOp(op, time.Since(start), err)
}

func (i *instrumentedBackend) Name() string { return i.next.Name() }

func (i *instrumentedBackend) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.observe("set", start, err)
	return err
}

func (i *instrumentedBackend) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := i.next.Get(ctx, key)
	i.observe("get", start, err)
	return v, ok, err
}

func (i *instrumentedBackend) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.observe("delete", start, err)
	return err
}

func (i *instrumentedBackend) Append(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Append(ctx, key, value)
	i.observe("append", start, err)
	return err
}

func (i *instrumentedBackend) Trim(ctx context.Context, key string, start, stop int64) error {
	began := time.Now()
	err := i.next.Trim(ctx, key, start, stop)
	i.observe("trim", began, err)
	return err
}

func (i *instrumentedBackend) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	began := time.Now()
	items, err := i.next.Range(ctx, key, start, stop)
	i.observe("range", began, err)
	return items, err
}

func (i *instrumentedBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	start := time.Now()
	err := i.next.Expire(ctx, key, ttl)
	i.observe("expire", start, err)
	return err
}

func (i *instrumentedBackend) Ping(ctx context.Context) bool {
	return i.next.Ping(ctx)
}

func (i *instrumentedBackend) Close() error { return i.next.Close() }
