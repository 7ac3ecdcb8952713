package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ent0n29/medmemory/internal/config"
	"github.com/ent0n29/medmemory/internal/httpapi"
	"github.com/ent0n29/medmemory/internal/memory"
	"github.com/ent0n29/medmemory/internal/observability"
)

type BuildResult struct {
	Config    config.Config
	API       *httpapi.Server
	Backend   memory.Backend
	ShortTerm *memory.ShortTerm
	LongTerm  *memory.LongTerm
	Metrics   *observability.Metrics

	// Cleanup should be called on shutdown to release the backend connection.
	Cleanup func() error
}

// Build connects the memory backend once and wires every component that
// shares it. A missing or unreachable backend is not an error.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	backend := memory.Connect(ctx, cfg.MemoryBackendURL, memory.ConnectOptions{
		ConnectTimeout: cfg.MemoryConnectTimeout,
		OpTimeout:      cfg.MemoryOpTimeout,
		Logger:         logger.With().Str("component", "memory").Logger(),
	})
	backend = observability.InstrumentBackend(backend, metrics)

	stm := memory.NewShortTerm(backend, memory.ShortTermConfig{
		Window: cfg.STMWindow,
		TTL:    cfg.STMTTL,
		Logger: logger.With().Str("component", "stm").Logger(),
	})
	ltm := memory.NewLongTerm(backend, logger.With().Str("component", "ltm").Logger())

	api := httpapi.New(cfg, backend, stm, ltm, metrics, logger.With().Str("component", "httpapi").Logger())

	return &BuildResult{
		Config:    cfg,
		API:       api,
		Backend:   backend,
		ShortTerm: stm,
		LongTerm:  ltm,
		Metrics:   metrics,
		Cleanup:   backend.Close,
	}, nil
}
