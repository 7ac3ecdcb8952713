package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrUnsupportedScheme = errors.New("unsupported memory backend scheme")

// ConnectOptions bounds the startup probe and every later backend call.
type ConnectOptions struct {
	ConnectTimeout time.Duration
	OpTimeout      time.Duration
	Logger         zerolog.Logger
}

// Connect opens the store named by backendURL and probes it with Ping. Any
// failure, including an empty URL, yields a NullBackend for the rest of the
// process lifetime; Connect itself never fails.
func Connect(ctx context.Context, backendURL string, opts ConnectOptions) Backend {
	log := opts.Logger
	backendURL = strings.TrimSpace(backendURL)
	if backendURL == "" {
		log.Warn().Msg("memory backend url not configured, running without memory")
		return NewNullBackend()
	}

	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	b, err := Open(ctx, backendURL)
	if err != nil {
		log.Warn().Err(err).Msg("memory backend unavailable, running without memory")
		return NewNullBackend()
	}
	if !b.Ping(ctx) {
		_ = b.Close()
		log.Warn().Str("backend", b.Name()).Msg("memory backend ping failed, running without memory")
		return NewNullBackend()
	}

	log.Info().Str("backend", b.Name()).Dur("op_timeout", opts.OpTimeout).Msg("memory backend connected")
	return WithTimeout(b, opts.OpTimeout)
}

// Open dispatches on the URL scheme without any fallback.
func Open(ctx context.Context, backendURL string) (Backend, error) {
	scheme, _, ok := strings.Cut(backendURL, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, backendURL)
	}
	switch strings.ToLower(scheme) {
	case "redis", "rediss", "unix":
		return NewRedisBackend(ctx, backendURL)
	case "postgres", "postgresql":
		return NewPostgresBackend(ctx, backendURL)
	case "mem":
		return NewInMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}
