// Package adminhttp exposes the service's operational surface —
// Prometheus metrics, liveness, and a small status page — over a chi
// router, the same router library and Start/Stop-with-context shape
// the protokol REST adapter uses for its own HTTP surface.
package adminhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/bgwork"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/prefixcache"
)

// StatusSource supplies the live values /statusz reports.
type StatusSource interface {
	Stats() prefixcache.Stats
	Uptime() time.Duration
}

// Server is the admin HTTP surface: /metrics, /healthz, /statusz.
type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// New builds a Server bound to listen, reading cache stats from
// source and pool stats (if warm is non-nil) for /statusz.
func New(listen string, registry *prometheus.Registry, source StatusSource, warm *bgwork.Queue) *Server {
	router := chi.NewRouter()

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	router.Get("/statusz", func(w http.ResponseWriter, r *http.Request) {
		stats := source.Stats()
		payload := statusPayload{
			UptimeSeconds: source.Uptime().Seconds(),
			Cache:         stats,
		}
		if warm != nil {
			ws := warm.Stats()
			payload.Warm = &ws
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	return &Server{
		httpServer: &http.Server{Addr: listen, Handler: router},
		router:     router,
	}
}

type statusPayload struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	Cache         prefixcache.Stats  `json:"cache"`
	Warm          *bgwork.Stats      `json:"warm_queue,omitempty"`
}

// Start runs the HTTP server until ctx is cancelled or the server
// fails to bind.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
