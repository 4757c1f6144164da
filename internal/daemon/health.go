package daemon

import (
	"time"

	"git.home.luguber.info/inful/backupstate/internal/metrics"
	"git.home.luguber.info/inful/backupstate/internal/server/responses"
	"git.home.luguber.info/inful/backupstate/internal/version"
)

// HealthStatus represents the overall health of the daemon
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// Health reports daemon liveness. The daemon is degraded when the most recent
// verification could not complete, and unhealthy when it is not running.
func (d *Daemon) Health() responses.HealthResponse {
	now := d.clock.Now()
	resp := responses.HealthResponse{
		Status:       string(HealthStatusHealthy),
		Version:      version.Version,
		StartTime:    d.startTime,
		SnapshotPath: d.store.Path(),
		HasSnapshot:  d.store.Exists(),
	}
	if !d.startTime.IsZero() {
		resp.Uptime = now.Sub(d.startTime).Round(time.Second).String()
	}

	if last, outcome, ok := d.runner.LastRun(); ok {
		resp.LastRun = &last
		resp.LastOutcome = string(outcome)
		if outcome == metrics.OutcomeError {
			resp.Status = string(HealthStatusDegraded)
		}
	}
	if d.GetStatus() != StatusRunning {
		resp.Status = string(HealthStatusUnhealthy)
	}
	return resp
}
