// Package metrics defines the Recorder abstraction for command-handling
// observability plus a Prometheus-backed implementation. The NoopRecorder is
// injected when no metrics endpoint is configured.
package metrics
