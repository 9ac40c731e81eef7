// Package telemetry wraps OpenTelemetry SDK initialization, providing a
// central TracerProvider and MeterProvider setup. When telemetry is
// disabled it uses noop implementations and connects to nothing.
package telemetry
