package memory

import (
	"context"
	"time"
)

// NullBackend discards writes and answers every read as absent. It stands in
// for the real store when that store is unreachable at startup.
type NullBackend struct{}

func NewNullBackend() *NullBackend { return &NullBackend{} }

func (NullBackend) Name() string { return BackendNull }

func (NullBackend) Set(context.Context, string, string) error { return nil }

func (NullBackend) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NullBackend) Delete(context.Context, string) error { return nil }

func (NullBackend) Append(context.Context, string, string) error { return nil }

func (NullBackend) Trim(context.Context, string, int64, int64) error { return nil }

func (NullBackend) Range(context.Context, string, int64, int64) ([]string, error) { return nil, nil }

func (NullBackend) Expire(context.Context, string, time.Duration) error { return nil }

func (NullBackend) Ping(context.Context) bool { return false }

func (NullBackend) Close() error { return nil }
