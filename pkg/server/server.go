// Package server serves the health and metrics endpoints of a watching
// configurator.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"mercator-hq/configurator/pkg/telemetry/health"
)

// DefaultShutdownTimeout bounds the graceful shutdown of a Server.
const DefaultShutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Address is the TCP listen address. "127.0.0.1:0" picks a free port.
	Address string

	// Checker backs /healthz and /readyz.
	Checker *health.Checker

	// MetricsPath mounts Metrics when both are set.
	MetricsPath string
	Metrics     http.Handler

	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server is the HTTP server for health probes and Prometheus scrapes.
type Server struct {
	opts         Options
	httpServer   *http.Server
	listener     net.Listener
	errChan      chan error
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Call Start to begin serving.
func New(opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{opts: opts, errChan: make(chan error, 1)}
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Address, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.isRunning = true

	go func() {
		s.opts.Logger.Info("starting health server", "address", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Error("health server failed", "error", err)
			s.errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Errors reports a serve failure after Start.
func (s *Server) Errors() <-chan error {
	return s.errChan
}

// Shutdown gracefully stops the server. Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()
		if !running {
			return
		}

		s.opts.Logger.Info("initiating graceful shutdown", "timeout", s.opts.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.opts.Logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.opts.Logger.Info("health server stopped")
	})

	return shutdownErr
}

// IsRunning returns true between Start and Shutdown.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Checker != nil {
		mux.Handle("/healthz", s.opts.Checker.LivenessHandler())
		mux.Handle("/readyz", s.opts.Checker.ReadinessHandler())
	}
	if s.opts.Metrics != nil && s.opts.MetricsPath != "" {
		mux.Handle(s.opts.MetricsPath, s.opts.Metrics)
	}
	return mux
}
