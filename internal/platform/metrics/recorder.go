package metrics

import "time"

// ResultLabel enumerates command outcomes for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNoop     ResultLabel = "noop"
	ResultRejected ResultLabel = "rejected"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder receives state manager observations. Implementations must be safe
// for concurrent use.
type Recorder interface {
	IncCommand(component, command string, result ResultLabel)
	ObserveCommandDuration(component, command string, d time.Duration)
	IncStorageError(op string)
	SetTracking(open bool)
}

// NoopRecorder is the default when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) IncCommand(string, string, ResultLabel)               {}
func (NoopRecorder) ObserveCommandDuration(string, string, time.Duration) {}
func (NoopRecorder) IncStorageError(string)                               {}
func (NoopRecorder) SetTracking(bool)                                     {}
