// Package observability provides structured logging, Prometheus
// metrics, and OpenTelemetry tracing for the dispatch runtime.
package observability
