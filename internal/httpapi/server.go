package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ent0n29/medmemory/internal/config"
	"github.com/ent0n29/medmemory/internal/memory"
	"github.com/ent0n29/medmemory/internal/observability"
	"github.com/ent0n29/medmemory/internal/policy"
	"github.com/ent0n29/medmemory/internal/reliability"
)

type Server struct {
	cfg     config.Config
	backend memory.Backend
	stm     *memory.ShortTerm
	ltm     *memory.LongTerm
	metrics *observability.Metrics
	log     zerolog.Logger
}

func New(cfg config.Config, backend memory.Backend, stm *memory.ShortTerm, ltm *memory.LongTerm, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		backend: backend,
		stm:     stm,
		ltm:     ltm,
		metrics: metrics,
		log:     logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Route("/v1/memory/stm/{patient}/{counterpart}", func(r chi.Router) {
		r.Post("/conversations", s.handleStartConversation)
		r.Post("/{conversation}/messages", s.handleAddMessage)
		r.Get("/{conversation}/messages", s.handleHistory)
		r.Get("/{conversation}/last-user-question", s.handleLastUserQuestion)
		r.Delete("/{conversation}", s.handleClearConversation)
	})
	r.Route("/v1/memory/ltm/{patient}", func(r chi.Router) {
		r.Get("/", s.handleGetRecord)
		r.Put("/", s.handleSetRecord)
		r.Patch("/", s.handleUpdateRecord)
		r.Delete("/", s.handleClearRecord)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backend":  s.backend.Name(),
		"degraded": memory.Degraded(s.backend),
	})
}

// handleReady always reports ready: running without memory is a valid state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ready",
		"backend":        s.backend.Name(),
		"degraded":       memory.Degraded(s.backend),
		"backend_ping":   s.backend.Ping(r.Context()),
		"stm_window":     s.stm.Window(),
		"stm_ttl":        s.cfg.STMTTL.String(),
		"op_timeout":     s.cfg.MemoryOpTimeout.String(),
		"metrics_prefix": s.cfg.MetricsNamespace,
	})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"generated_at": "",
			"window_size":  0,
			"ops":          []any{},
		})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.SnapshotBackendLatency())
}

func (s *Server) event(tier, name string) {
	if s.metrics != nil {
		s.metrics.MemoryEvent(tier, name)
	}
}

// respondMemoryError maps a backend failure onto a status code. Transient
// failures are 503 so callers can choose to proceed without memory.
func (s *Server) respondMemoryError(w http.ResponseWriter, op string, err error) {
	class := reliability.Classify(err)
	msg := policy.SanitizeError(err)
	s.log.Warn().Str("op", op).Str("class", string(class)).Str("error", msg).Msg("memory operation failed")

	status := http.StatusInternalServerError
	code := "memory_error"
	switch class {
	case reliability.ClassTimeout, reliability.ClassUnavailable, reliability.ClassCanceled:
		status = http.StatusServiceUnavailable
		code = "memory_unavailable"
	}
	if reliability.IsTransient(err) {
		w.Header().Set("Retry-After", "1")
	}
	respondError(w, status, code, msg)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
