package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/state"
)

// Status represents the current state of the daemon
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// DefaultShutdownTimeout bounds Stop when Run's context is cancelled.
const DefaultShutdownTimeout = 10 * time.Second

// Options wires the daemon's collaborators.
type Options struct {
	Checker  Checker
	Store    SnapshotStore
	Interval time.Duration

	// ArtifactRoot and Artifacts select the files watched for removal.
	// Watching is disabled when Artifacts is empty.
	ArtifactRoot string
	Artifacts    []string

	// AdminAddr enables the admin HTTP server when set.
	AdminAddr      string
	MetricsHandler http.Handler

	Logger *slog.Logger
	Clock  clockwork.Clock
}

// SnapshotStore is what the admin API needs from the snapshot store.
type SnapshotStore interface {
	state.SnapshotReader
	Path() string
}

// Daemon runs verification on a schedule, on artifact removal and on demand.
type Daemon struct {
	status    atomic.Value // Status
	startTime time.Time
	mu        sync.Mutex
	stopped   bool
	runCtx    context.Context
	cancel    context.CancelFunc

	interval       time.Duration
	store          SnapshotStore
	metricsHandler http.Handler
	logger         *slog.Logger
	clock          clockwork.Clock

	runner     *Runner
	scheduler  *Scheduler
	watcher    *ArtifactWatcher
	httpServer *HTTPServer
}

// New validates opts and builds the daemon's components.
func New(opts Options) (*Daemon, error) {
	if opts.Checker == nil {
		return nil, ferrors.DaemonError("daemon requires a verification engine").Build()
	}
	if opts.Store == nil {
		return nil, ferrors.DaemonError("daemon requires a snapshot store").Build()
	}
	if opts.Interval <= 0 {
		return nil, ferrors.DaemonError("verify interval must be positive").
			WithContext("interval", opts.Interval.String()).
			Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	d := &Daemon{
		interval:       opts.Interval,
		store:          opts.Store,
		metricsHandler: opts.MetricsHandler,
		logger:         opts.Logger,
		clock:          opts.Clock,
		runner:         NewRunner(opts.Checker, opts.Logger, opts.Clock),
	}
	d.status.Store(StatusStopped)

	scheduler, err := NewScheduler(opts.Logger)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to create scheduler").Build()
	}
	d.scheduler = scheduler

	if len(opts.Artifacts) > 0 {
		watcher, err := NewArtifactWatcher(opts.ArtifactRoot, opts.Artifacts, func() {
			d.runner.Trigger(d.context(), TriggerArtifact)
		}, opts.Logger)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to create artifact watcher").Build()
		}
		d.watcher = watcher
	}

	if opts.AdminAddr != "" {
		d.httpServer = NewHTTPServer(opts.AdminAddr, d)
	}
	return d, nil
}

// Start launches the admin server, runs one verification and starts the
// scheduler and artifact watcher. It returns once everything is running.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ferrors.DaemonError("daemon cannot be restarted after Stop").Build()
	}
	if d.GetStatus() != StatusStopped {
		return ferrors.DaemonError("daemon is not in stopped state").
			WithContext("status", string(d.GetStatus())).
			Build()
	}
	d.status.Store(StatusStarting)
	d.startTime = d.clock.Now()
	d.runCtx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))

	d.logger.Info("Starting backupstate daemon",
		logfields.SnapshotPath(d.store.Path()),
		slog.Duration("interval", d.interval))

	if d.httpServer != nil {
		if err := d.httpServer.Start(ctx); err != nil {
			d.status.Store(StatusError)
			d.cancel()
			return err
		}
	}

	d.runner.Trigger(d.runCtx, TriggerStartup)

	if _, err := d.scheduler.ScheduleVerify(d.interval, func() {
		d.runner.Trigger(d.context(), TriggerSchedule)
	}); err != nil {
		d.status.Store(StatusError)
		d.cancel()
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to schedule verification").Build()
	}
	d.scheduler.Start()

	if d.watcher != nil {
		if err := d.watcher.Start(d.runCtx); err != nil {
			d.logger.Error("Failed to start artifact watcher", logfields.Error(err))
		}
	}

	d.status.Store(StatusRunning)
	d.logger.Info("Backupstate daemon started")
	return nil
}

// Run starts the daemon and blocks until ctx is cancelled, then stops it.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	return d.Stop(stopCtx)
}

// Stop gracefully shuts down the daemon
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	currentStatus := d.GetStatus()
	if currentStatus == StatusStopped || currentStatus == StatusStopping {
		return nil
	}
	d.status.Store(StatusStopping)
	d.logger.Info("Stopping backupstate daemon")

	// Stop components in reverse order
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Error("Failed to stop artifact watcher", logfields.Error(err))
		}
	}
	if err := d.scheduler.Stop(); err != nil {
		d.logger.Error("Failed to stop scheduler", logfields.Error(err))
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			d.logger.Error("Failed to stop admin server", logfields.Error(err))
		}
	}
	if d.cancel != nil {
		d.cancel()
	}

	d.stopped = true
	d.status.Store(StatusStopped)
	d.logger.Info("Backupstate daemon stopped", slog.Duration("uptime", d.clock.Since(d.startTime)))
	return nil
}

// GetStatus returns the current daemon status
func (d *Daemon) GetStatus() Status {
	if s, ok := d.status.Load().(Status); ok {
		return s
	}
	return StatusStopped
}

// Runner exposes the verification runner.
func (d *Daemon) Runner() *Runner { return d.runner }

// AdminAddr returns the admin server's bound address, or "" when disabled.
func (d *Daemon) AdminAddr() string {
	if d.httpServer == nil {
		return ""
	}
	return d.httpServer.Addr()
}

func (d *Daemon) context() context.Context {
	if d.runCtx == nil {
		return context.Background()
	}
	return d.runCtx
}
