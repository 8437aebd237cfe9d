package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the poller's status and metrics over HTTP.
type Server struct {
	poller *Poller
	logger *slog.Logger
	srv    *http.Server
}

// NewServer constructs a status server for p.
func NewServer(cfg Config, p *Poller, m *Metrics, logger *slog.Logger) *Server {
	s := &Server{poller: p, logger: logger}
	r := chi.NewRouter()
	r.Get("/api/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           basicAuth(cfg.StatusUser, cfg.StatusPasswordHash, r),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, including authentication.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start listens until Shutdown is called.  It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleStatus returns the poller's last snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.poller.Status()); err != nil {
		s.logger.Error("encode status", "error", err)
	}
}
