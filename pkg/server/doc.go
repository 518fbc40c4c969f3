// Package server provides the HTTP tool server for policy evaluation.
//
// This package ties together the policy manager, the evidence recorder,
// and telemetry, and provides server lifecycle management including
// start, graceful shutdown, and health checks.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes for the agent-facing tools
//   - Chains middleware for cross-cutting concerns
//   - Records evaluations as evidence and metrics
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "guardrail-hq/meridian/pkg/config"
//	    "guardrail-hq/meridian/pkg/policy/manager"
//	    "guardrail-hq/meridian/pkg/policy/source"
//	    "guardrail-hq/meridian/pkg/server"
//	)
//
//	cfg := config.Default()
//
//	mgr, err := manager.New(source.NewMemorySource(), "", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	srv := server.NewServer(cfg, mgr, server.Options{Logger: logger})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /tools/evaluate_policy - Evaluate a proposed discount
//   - POST /tools/get_policy_summary - Human-readable policy summary
//   - POST /tools/get_max_discount - Maximum achievable discount
//   - POST /tools/validate_discount_code - UCP discount code validation
//   - POST /tools/simulate_checkout_discount - UCP checkout simulation
//   - GET /policies/active - The active policy document
//   - GET /health - Liveness probe
//   - GET /metrics - Prometheus metrics (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Metrics: Records per-handler request counts and latency
//  2. RequestID: Generates or propagates X-Request-ID
//  3. Logging: Logs request/response details
//  4. Recovery: Recovers from panics and returns a structured 500
//
// # Graceful Shutdown
//
// The server shuts down gracefully on SIGTERM or SIGINT, or when the
// Start context is cancelled. In-flight requests get the configured
// shutdown timeout to complete.
package server
