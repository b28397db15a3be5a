package metrics

import "time"

// ResultLabel enumerates command result categories for counters.
type ResultLabel string

const (
	ResultOK       ResultLabel = "ok"
	ResultDenied   ResultLabel = "denied"
	ResultDegraded ResultLabel = "degraded"
	ResultError    ResultLabel = "error"
)

// Recorder defines observability hooks for command handling. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for
// the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveHandleDuration(command string, d time.Duration)
	IncCommand(command string, result ResultLabel)
	IncFeeding(pet, kind string)
	IncRollover()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHandleDuration(string, time.Duration) {}
func (NoopRecorder) IncCommand(string, ResultLabel)              {}
func (NoopRecorder) IncFeeding(string, string)                   {}
func (NoopRecorder) IncRollover()                                {}
