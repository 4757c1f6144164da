package verify

import (
	"time"

	"git.home.luguber.info/inful/backupstate/internal/metrics"
	"git.home.luguber.info/inful/backupstate/internal/notify"
)

// Report is the outcome of one verification run.
type Report struct {
	RunID        string `json:"run_id"`
	SnapshotPath string `json:"snapshot_path"`

	// Baseline is set when no snapshot existed and this run created one.
	Baseline      bool `json:"baseline"`
	BaselineSaved bool `json:"baseline_saved"`

	SnapshotTimestamp time.Time `json:"snapshot_timestamp,omitzero"`
	CheckedAt         time.Time `json:"checked_at"`

	CurrentTables []string `json:"current_tables"`
	SavedTables   []string `json:"saved_tables"`

	// Added holds tables present now but absent from the snapshot; Missing the reverse.
	Added            []string `json:"added_tables"`
	Missing          []string `json:"missing_tables"`
	MissingArtifacts []string `json:"missing_artifacts"`
}

// HasTableDrift reports whether the table inventory differs from the snapshot.
func (r *Report) HasTableDrift() bool {
	return len(r.Added) > 0 || len(r.Missing) > 0
}

// HasDrift reports table drift or missing artifacts.
func (r *Report) HasDrift() bool {
	return r.HasTableDrift() || len(r.MissingArtifacts) > 0
}

// Outcome classifies the run for metrics.
func (r *Report) Outcome() metrics.Outcome {
	switch {
	case r.Baseline && !r.BaselineSaved:
		return metrics.OutcomeError
	case r.Baseline:
		return metrics.OutcomeBaseline
	case r.HasDrift():
		return metrics.OutcomeDrift
	default:
		return metrics.OutcomeClean
	}
}

// DriftEvent converts the report into a notification payload.
func (r *Report) DriftEvent() notify.DriftEvent {
	return notify.DriftEvent{
		RunID:             r.RunID,
		SnapshotPath:      r.SnapshotPath,
		SnapshotTimestamp: r.SnapshotTimestamp,
		CheckedAt:         r.CheckedAt,
		AddedTables:       r.Added,
		MissingTables:     r.Missing,
		MissingArtifacts:  r.MissingArtifacts,
	}
}
