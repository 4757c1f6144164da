// Package responses defines response types returned by the admin HTTP API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/backupstate/internal/verify"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string     `json:"status"`
	Version      string     `json:"version"`
	Uptime       string     `json:"uptime"`
	StartTime    time.Time  `json:"start_time"`
	SnapshotPath string     `json:"snapshot_path"`
	HasSnapshot  bool       `json:"has_snapshot"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastOutcome  string     `json:"last_outcome,omitempty"`
}

// VerifyResponse is returned by POST /verify. Exactly one of Report and Error is set.
type VerifyResponse struct {
	Verified bool           `json:"verified"`
	Report   *verify.Report `json:"report,omitempty"`
	Error    string         `json:"error,omitempty"`
}
