package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/backupstate/internal/foundation"
	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/metrics"
	"git.home.luguber.info/inful/backupstate/internal/observability"
	"git.home.luguber.info/inful/backupstate/internal/verify"
)

// Trigger names what started a verification run.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerSchedule Trigger = "schedule"
	TriggerArtifact Trigger = "artifact"
	TriggerHTTP     Trigger = "http"
)

// Checker is the part of the verification engine the daemon drives.
type Checker interface {
	Check(ctx context.Context) foundation.Result[*verify.Report, error]
}

// Runner serializes verification runs so the daemon never races itself.
type Runner struct {
	checker Checker
	logger  *slog.Logger
	clock   clockwork.Clock

	mu          sync.Mutex
	stateMu     sync.RWMutex
	lastRun     time.Time
	lastOutcome metrics.Outcome
	runs        int
}

// NewRunner creates a runner around checker.
func NewRunner(checker Checker, logger *slog.Logger, clock clockwork.Clock) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{checker: checker, logger: logger, clock: clock}
}

// Run performs one verification and records its outcome.
func (r *Runner) Run(ctx context.Context, trigger Trigger) foundation.Result[*verify.Report, error] {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("Verification triggered", slog.String("trigger", string(trigger)))
	res := r.checker.Check(ctx)

	outcome := metrics.OutcomeError
	if res.IsOk() {
		outcome = res.Unwrap().Outcome()
	}

	r.stateMu.Lock()
	r.lastRun = r.clock.Now()
	r.lastOutcome = outcome
	r.runs++
	r.stateMu.Unlock()
	return res
}

// Trigger runs a verification whose result nobody waits for. Errors are
// logged at warn level and dropped, the same way Engine.Verify treats them.
func (r *Runner) Trigger(ctx context.Context, trigger Trigger) {
	res := r.Run(ctx, trigger)
	if res.IsErr() {
		observability.Logger(ctx, r.logger).Warn("Backup state verification failed",
			slog.String("trigger", string(trigger)),
			logfields.Error(res.UnwrapErr()))
	}
}

// LastRun returns the time and outcome of the most recent run.
func (r *Runner) LastRun() (time.Time, metrics.Outcome, bool) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.lastRun, r.lastOutcome, r.runs > 0
}

// Runs returns the number of completed runs.
func (r *Runner) Runs() int {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.runs
}
