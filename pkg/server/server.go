package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"guardrail-hq/meridian/pkg/config"
	"guardrail-hq/meridian/pkg/evidence/recorder"
	"guardrail-hq/meridian/pkg/policy/engine"
	"guardrail-hq/meridian/pkg/policy/manager"
	"guardrail-hq/meridian/pkg/telemetry/metrics"
)

// Server is the HTTP tool server for policy evaluation.
type Server struct {
	config       *config.Config
	manager      *manager.Manager
	recorder     *recorder.Recorder
	collector    *metrics.Collector
	constraints  *engine.Constraints
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options carries the optional collaborators for a Server. Any nil
// field disables the corresponding concern.
type Options struct {
	// Recorder records evaluations as evidence. Nil disables recording.
	Recorder *recorder.Recorder

	// Collector records Prometheus metrics. Nil disables metrics.
	Collector *metrics.Collector

	// Constraints overrides the solver constraint set. Zero value
	// falls back to engine.DefaultConstraints.
	Constraints *engine.Constraints

	Logger *slog.Logger
}

// NewServer creates a new tool server.
func NewServer(cfg *config.Config, mgr *manager.Manager, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:       cfg,
		manager:      mgr,
		recorder:     opts.Recorder,
		collector:    opts.Collector,
		constraints:  opts.Constraints,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
		isRunning:    false,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting tool server",
			"address", s.config.Server.ListenAddress,
			"policy_id", s.manager.Policy().ID,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("tool server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	tools := NewToolHandler(s.manager, ToolHandlerOptions{
		Recorder:    s.recorder,
		Collector:   s.collector,
		Constraints: s.constraints,
		Logger:      s.logger,
	})

	mux.HandleFunc("/tools/evaluate_policy", tools.EvaluatePolicy)
	mux.HandleFunc("/tools/get_policy_summary", tools.GetPolicySummary)
	mux.HandleFunc("/tools/get_max_discount", tools.GetMaxDiscount)
	mux.HandleFunc("/tools/validate_discount_code", tools.ValidateDiscountCode)
	mux.HandleFunc("/tools/simulate_checkout_discount", tools.SimulateCheckoutDiscount)
	mux.HandleFunc("/policies/active", tools.ActivePolicy)
	mux.HandleFunc("/health", tools.Health)

	if s.collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux

	if s.collector != nil {
		handler = metricsMiddleware(s.collector)(handler)
	}
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}

// Handler returns the configured HTTP handler. Useful for tests that
// drive the server through httptest instead of a listening socket.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
