package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/docvault/pkg/logger"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc is a single readiness check.
type CheckFunc func(ctx context.Context) error

// Health serves liveness and readiness probes.
type Health struct {
	checks  map[string]CheckFunc
	order   []string
	timeout time.Duration
	logger  *slog.Logger
}

// HealthOption configures Health.
type HealthOption func(*Health)

// WithCheck adds a named readiness check.
func WithCheck(name string, check CheckFunc) HealthOption {
	return func(h *Health) {
		if check == nil {
			return
		}
		if _, exists := h.checks[name]; !exists {
			h.order = append(h.order, name)
		}
		h.checks[name] = check
	}
}

// WithPinger adds p.Ping as a named readiness check.
func WithPinger(name string, p Pinger) HealthOption {
	if p == nil {
		return func(*Health) {}
	}
	return WithCheck(name, p.Ping)
}

// WithCheckTimeout bounds every readiness run. Defaults to 5s.
func WithCheckTimeout(d time.Duration) HealthOption {
	return func(h *Health) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithHealthLogger sets where failed checks are logged.
func WithHealthLogger(l *slog.Logger) HealthOption {
	return func(h *Health) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHealth creates the probe handlers.
func NewHealth(opts ...HealthOption) *Health {
	h := &Health{
		checks:  make(map[string]CheckFunc),
		timeout: 5 * time.Second,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the probe routes:
//
//	GET /live   200 "ALIVE" while the process serves requests
//	GET /ready  200 "READY", or 503 "NOT_READY" when any check fails
func (h *Health) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/live", HealthCheckHandler(h.logger))
	r.Get("/ready", HealthCheckHandler(h.logger, h.Check))
	return r
}

// Check runs every readiness check in registration order and returns the
// failures joined, each wrapped with ErrNotReady.
func (h *Health) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var errs []error
	for _, name := range h.order {
		if err := h.checks[name](ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrNotReady, name, err))
		}
	}
	return errors.Join(errs...)
}

// HealthCheckHandler returns a probe handler. Without checks it is a liveness
// probe answering "ALIVE". With checks it is a readiness probe answering
// "READY" when all pass and 503 "NOT_READY" otherwise. Checks run with the
// request context.
func HealthCheckHandler(log *slog.Logger, checks ...CheckFunc) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
