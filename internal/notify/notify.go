// Package notify publishes drift reports to external subscribers.
package notify

import (
	"context"
	"time"
)

// DriftEvent is the payload published when verification finds drift.
type DriftEvent struct {
	RunID             string    `json:"run_id"`
	SnapshotPath      string    `json:"snapshot_path"`
	SnapshotTimestamp time.Time `json:"snapshot_timestamp"`
	CheckedAt         time.Time `json:"checked_at"`
	AddedTables       []string  `json:"added_tables"`
	MissingTables     []string  `json:"missing_tables"`
	MissingArtifacts  []string  `json:"missing_artifacts"`
	Host              string    `json:"host,omitempty"`
}

// Publisher delivers drift events.
type Publisher interface {
	PublishDrift(ctx context.Context, event DriftEvent) error
	Close() error
}

// NoopPublisher drops every event (default when notifications are not configured).
type NoopPublisher struct{}

func (NoopPublisher) PublishDrift(context.Context, DriftEvent) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }
