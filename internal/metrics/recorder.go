package metrics

import "time"

// Outcome labels a verification run.
type Outcome string

const (
	OutcomeBaseline Outcome = "baseline" // no snapshot existed; one was created
	OutcomeClean    Outcome = "clean"
	OutcomeDrift    Outcome = "drift"
	OutcomeError    Outcome = "error"
)

// SaveResult labels a snapshot save.
type SaveResult string

const (
	SaveSuccess SaveResult = "success"
	SaveFailed  SaveResult = "failed"
)

// Recorder defines observability hooks for snapshot and verification metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	IncVerifyRun(outcome Outcome)
	ObserveVerifyDuration(d time.Duration)
	SetDriftTables(added, missing int)
	SetMissingArtifacts(n int)
	IncSnapshotSave(result SaveResult)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncVerifyRun(Outcome)                {}
func (NoopRecorder) ObserveVerifyDuration(time.Duration) {}
func (NoopRecorder) SetDriftTables(int, int)             {}
func (NoopRecorder) SetMissingArtifacts(int)             {}
func (NoopRecorder) IncSnapshotSave(SaveResult)          {}
