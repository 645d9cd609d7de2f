// Package observability provides structured logging, Prometheus metrics,
// health probes, and optional OpenTelemetry tracing for the access service.
//
// Logging is JSON-structured on top of stdlib slog with field chaining
// (WithField, WithError) and context helpers for request and user ids.
// Metrics cover the HTTP surface, permission checks, department switches,
// and preference persistence. Health exposes liveness and readiness probes;
// readiness pings the preference store's Redis backend when one is
// configured.
package observability
