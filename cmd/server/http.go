package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/steward/internal/config"
	"github.com/JaimeStill/steward/pkg/lifecycle"
)

type httpServer struct {
	srv      *http.Server
	logger   *slog.Logger
	drainFor time.Duration
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	return &httpServer{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
			WriteTimeout:      cfg.WriteTimeoutDuration(),
		},
		logger:   logger.With("system", "http"),
		drainFor: cfg.ShutdownTimeoutDuration(),
	}
}

// Start binds the listener before returning, so an occupied port fails
// startup instead of surfacing later in the log. Shutdown is a drain hook:
// in-flight triage requests finish before the database and delivery close.
func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}

	go func() {
		s.logger.Info("accepting requests", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()

	lc.OnDrain(s.drain)
	return nil
}

func (s *httpServer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), s.drainFor)
	defer cancel()

	start := time.Now()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("requests still open at drain deadline", "error", err, "waited", time.Since(start))
		return
	}
	s.logger.Info("http drained", "waited", time.Since(start))
}
