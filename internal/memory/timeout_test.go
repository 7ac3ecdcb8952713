package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

// blockingBackend waits on the caller's context for every Get.
type blockingBackend struct {
	NullBackend
}

func (blockingBackend) Name() string { return "blocking" }

func (blockingBackend) Get(ctx context.Context, _ string) (string, bool, error) {
	<-ctx.Done()
	return "", false, ctx.Err()
}

func TestWithTimeoutBoundsEachCall(t *testing.T) {
	b := WithTimeout(blockingBackend{}, 20*time.Millisecond)

	start := time.Now()
	_, _, err := b.Get(context.Background(), "k")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Get() took %v, want bounded by timeout", elapsed)
	}
	if b.Name() != "blocking" {
		t.Fatalf("Name() = %q, want wrapped name", b.Name())
	}
}

func TestWithTimeoutZeroIsPassthrough(t *testing.T) {
	inner := NewInMemoryBackend()
	if got := WithTimeout(inner, 0); got != Backend(inner) {
		t.Fatalf("WithTimeout(0) wrapped the backend")
	}
}
