// Package metrics provides Prometheus instrumentation for the HTTP
// surface, model adapters, tool dispatch, and the retrieval pipeline.
package metrics
