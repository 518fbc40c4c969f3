// Package metrics exposes Prometheus metrics for policy evaluations,
// solver calls, and the tool server.
//
// All metrics live under the "meridian" namespace and register against
// a per-Collector registry, so tests can create isolated collectors
// without hitting the global default registry.
package metrics
