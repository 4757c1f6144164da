package verify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"

	"git.home.luguber.info/inful/backupstate/internal/catalog"
	"git.home.luguber.info/inful/backupstate/internal/foundation"
	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/metrics"
	"git.home.luguber.info/inful/backupstate/internal/notify"
	"git.home.luguber.info/inful/backupstate/internal/observability"
	"git.home.luguber.info/inful/backupstate/internal/state"
	"git.home.luguber.info/inful/backupstate/internal/util/sets"
)

const operationVerify = "verify"

// Engine compares the live table inventory and artifacts against the stored snapshot.
type Engine struct {
	store     state.Store
	tables    catalog.TableSource
	artifacts ArtifactChecker
	clock     clockwork.Clock
	logger    *slog.Logger
	recorder  metrics.Recorder
	publisher notify.Publisher
	newRunID  func() string
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option        { return func(e *Engine) { e.logger = l } }
func WithClock(c clockwork.Clock) Option      { return func(e *Engine) { e.clock = c } }
func WithRecorder(r metrics.Recorder) Option  { return func(e *Engine) { e.recorder = r } }
func WithPublisher(p notify.Publisher) Option { return func(e *Engine) { e.publisher = p } }

// WithArtifactChecker replaces the filesystem check used for recorded artifacts.
func WithArtifactChecker(c ArtifactChecker) Option {
	return func(e *Engine) { e.artifacts = c }
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newRunID = fn }
}

// NewEngine creates a verification engine over store and the live table source.
func NewEngine(store state.Store, tables catalog.TableSource, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		tables:    tables,
		artifacts: OSArtifacts{},
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tables == nil {
		e.tables = catalog.Static{}
	}
	return e
}

// Verify runs Check and always reports success. An error from Check is logged
// at warn level and discarded; this is the only place that happens.
func (e *Engine) Verify(ctx context.Context) bool {
	ctx = e.runContext(ctx)
	res := e.Check(ctx)
	if res.IsErr() {
		observability.Logger(ctx, e.logger).Warn("Backup state verification failed",
			logfields.SnapshotPath(e.store.Path()),
			logfields.Error(res.UnwrapErr()))
	}
	return true
}

// Check performs one verification run. When no snapshot exists a baseline is
// created; otherwise the live state is compared against it. Drift is reported
// in the Report, not as an error.
func (e *Engine) Check(ctx context.Context) foundation.Result[*Report, error] {
	ctx = e.runContext(ctx)
	runID := observability.RunID(ctx)

	ctx, span := observability.StartSpan(ctx, "verify.check",
		attribute.String(logfields.KeyRunID, runID),
		attribute.String(logfields.KeySnapshotPath, e.store.Path()))
	start := e.clock.Now()

	report, err := e.check(ctx, runID)

	e.recorder.ObserveVerifyDuration(e.clock.Since(start))
	if err != nil {
		observability.EndSpan(span, err)
		e.recorder.IncVerifyRun(metrics.OutcomeError)
		return foundation.Err[*Report, error](err)
	}
	span.SetAttributes(attribute.String(logfields.KeyOutcome, string(report.Outcome())))
	observability.EndSpan(span, nil)
	e.recorder.IncVerifyRun(report.Outcome())
	return foundation.Ok[*Report, error](report)
}

// runContext tags ctx with a fresh run ID unless one is already present.
func (e *Engine) runContext(ctx context.Context) context.Context {
	if observability.RunID(ctx) == "" {
		ctx = observability.WithRunID(ctx, e.newRunID())
	}
	return observability.WithOperation(ctx, operationVerify)
}

func (e *Engine) check(ctx context.Context, runID string) (*Report, error) {
	report := &Report{
		RunID:        runID,
		SnapshotPath: e.store.Path(),
		CheckedAt:    e.clock.Now().UTC(),
	}

	loaded := e.store.Load(ctx)
	if loaded.IsErr() {
		return nil, loaded.UnwrapErr()
	}
	snapshot := loaded.Unwrap()
	if snapshot.IsNone() {
		e.createBaseline(ctx, report)
		return report, nil
	}

	if err := e.compare(ctx, snapshot.Unwrap(), report); err != nil {
		return nil, err
	}
	return report, nil
}

func (e *Engine) createBaseline(ctx context.Context, report *Report) {
	log := observability.Logger(ctx, e.logger)
	report.Baseline = true

	info := map[string]any{
		"initial_setup": true,
		"timestamp":     e.clock.Now().Format(time.RFC3339Nano),
	}
	res := e.store.SaveSnapshot(ctx, info)
	if res.IsErr() {
		log.Error("Failed to create initial backup state",
			logfields.SnapshotPath(report.SnapshotPath),
			logfields.Error(res.UnwrapErr()))
		return
	}

	snap := res.Unwrap()
	report.BaselineSaved = true
	report.SnapshotTimestamp = snap.Timestamp.Time
	report.SavedTables = snap.Tables
	report.CurrentTables = snap.Tables
	report.Added = []string{}
	report.Missing = []string{}
	report.MissingArtifacts = []string{}
	e.recorder.SetDriftTables(0, 0)
	e.recorder.SetMissingArtifacts(0)
	log.Info("Created initial backup state",
		logfields.SnapshotPath(report.SnapshotPath),
		logfields.TablesSaved(len(snap.Tables)))
}

func (e *Engine) compare(ctx context.Context, snap *state.Snapshot, report *Report) error {
	log := observability.Logger(ctx, e.logger)

	report.SnapshotTimestamp = snap.Timestamp.Time

	// Artifacts are checked even when the data store is unreachable.
	report.MissingArtifacts = []string{}
	for _, artifact := range snap.ConfigFiles {
		if e.artifacts.Exists(artifact) {
			continue
		}
		report.MissingArtifacts = append(report.MissingArtifacts, artifact)
		log.Warn("Configuration artifact missing", logfields.Artifact(artifact))
	}
	e.recorder.SetMissingArtifacts(len(report.MissingArtifacts))

	current, err := e.tables.Tables(ctx)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDatabase, "failed to list current tables").
			WithContext("missing_artifacts", report.MissingArtifacts).
			Build()
	}

	currentSet := sets.New(current...)
	savedSet := sets.New(snap.Tables...)

	report.CurrentTables = sets.Sorted(currentSet)
	report.SavedTables = sets.Sorted(savedSet)
	report.Added = sets.Sorted(currentSet.Difference(savedSet))
	report.Missing = sets.Sorted(savedSet.Difference(currentSet))

	if report.HasTableDrift() {
		log.Warn("Database tables have changed since last backup",
			slog.Any(logfields.KeyTablesCurrent, report.CurrentTables),
			slog.Any(logfields.KeyTablesSaved, report.SavedTables),
			logfields.TablesAdded(report.Added),
			logfields.TablesMissing(report.Missing))
	}

	e.recorder.SetDriftTables(len(report.Added), len(report.Missing))

	if !report.HasDrift() {
		log.Info("Backup state verified",
			logfields.TablesCurrent(len(report.CurrentTables)),
			logfields.Outcome(string(metrics.OutcomeClean)))
		return nil
	}

	if err := e.publisher.PublishDrift(ctx, report.DriftEvent()); err != nil {
		log.Warn("Failed to publish drift notification", logfields.Error(err))
	}
	return nil
}
