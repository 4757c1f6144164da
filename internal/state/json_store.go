package state

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"

	"git.home.luguber.info/inful/backupstate/internal/catalog"
	"git.home.luguber.info/inful/backupstate/internal/foundation"
	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/metrics"
	"git.home.luguber.info/inful/backupstate/internal/observability"
	"git.home.luguber.info/inful/backupstate/internal/util/sets"
)

// writeFile is replaced in tests to simulate partial writes.
var writeFile = os.WriteFile

// JSONStore implements Store with a single JSON file.
type JSONStore struct {
	baseDir   string
	path      string
	tables    catalog.TableSource
	artifacts []string
	clock     clockwork.Clock
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// StoreOption configures a JSONStore.
type StoreOption func(*JSONStore)

// WithStateFile overrides the snapshot file name.
func WithStateFile(name string) StoreOption {
	return func(js *JSONStore) { js.path = filepath.Join(js.baseDir, name) }
}

// WithTableSource sets the data store whose inventory is captured on save.
func WithTableSource(src catalog.TableSource) StoreOption {
	return func(js *JSONStore) { js.tables = src }
}

// WithArtifacts sets the artifact identifiers recorded in every snapshot.
func WithArtifacts(files []string) StoreOption {
	return func(js *JSONStore) { js.artifacts = append([]string(nil), files...) }
}

// WithClock sets the clock used for snapshot timestamps.
func WithClock(c clockwork.Clock) StoreOption {
	return func(js *JSONStore) { js.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(js *JSONStore) { js.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) StoreOption {
	return func(js *JSONStore) { js.recorder = r }
}

// NewJSONStore creates the store and its storage directory.
// Construction fails when the directory cannot be created or the artifact
// list does not hold exactly ArtifactCount entries.
func NewJSONStore(baseDir string, opts ...StoreOption) foundation.Result[*JSONStore, error] {
	js := &JSONStore{
		baseDir:   baseDir,
		path:      filepath.Join(baseDir, DefaultStateFile),
		tables:    catalog.Static{},
		artifacts: DefaultArtifacts(),
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(js)
	}

	if len(js.artifacts) != ArtifactCount {
		return foundation.Err[*JSONStore, error](
			ferrors.ValidationError("artifact list must hold exactly three entries").
				WithContext("artifacts", js.artifacts).
				Build(),
		)
	}

	if err := js.EnsureDirectories(); err != nil {
		return foundation.Err[*JSONStore, error](err)
	}
	return foundation.Ok[*JSONStore, error](js)
}

// EnsureDirectories creates the storage directory. It is idempotent.
func (js *JSONStore) EnsureDirectories() error {
	if err := os.MkdirAll(js.baseDir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create storage directory").
			Fatal().
			WithContext("base_dir", js.baseDir).
			Build()
	}
	return nil
}

// Path returns the snapshot file path.
func (js *JSONStore) Path() string { return js.path }

// Artifacts returns the artifact identifiers recorded on save.
func (js *JSONStore) Artifacts() []string { return append([]string(nil), js.artifacts...) }

// Exists reports whether the snapshot file exists.
func (js *JSONStore) Exists() bool {
	_, err := os.Stat(js.path)
	return err == nil
}

// Save writes a new snapshot and reports success. Failures are logged.
// backupInfo is stored as JSON: Load returns numbers as float64 and nested
// values as map[string]any or []any, so a reloaded value equals the original
// at the JSON level rather than by Go type.
func (js *JSONStore) Save(ctx context.Context, backupInfo map[string]any) bool {
	res := js.SaveSnapshot(ctx, backupInfo)
	if res.IsErr() {
		observability.Logger(ctx, js.logger).Error("Failed to save backup state",
			logfields.SnapshotPath(js.path), logfields.Error(res.UnwrapErr()))
		return false
	}
	return true
}

// SaveSnapshot captures the current table inventory and replaces the snapshot file.
// A failed inventory query is logged and recorded as an empty table list.
func (js *JSONStore) SaveSnapshot(ctx context.Context, backupInfo map[string]any) foundation.Result[*Snapshot, error] {
	ctx, span := observability.StartSpan(ctx, "state.save", attribute.String(logfields.KeySnapshotPath, js.path))
	snap, err := js.save(ctx, backupInfo)
	observability.EndSpan(span, err)

	if err != nil {
		js.recorder.IncSnapshotSave(metrics.SaveFailed)
		return foundation.Err[*Snapshot, error](err)
	}
	js.recorder.IncSnapshotSave(metrics.SaveSuccess)
	return foundation.Ok[*Snapshot, error](snap)
}

func (js *JSONStore) save(ctx context.Context, backupInfo map[string]any) (*Snapshot, error) {
	log := observability.Logger(ctx, js.logger)

	info := make(map[string]any, len(backupInfo))
	maps.Copy(info, backupInfo)

	snap := &Snapshot{
		Timestamp:   Timestamp{js.clock.Now()},
		Tables:      sets.Sorted(sets.New(js.currentTables(ctx)...)),
		ConfigFiles: js.Artifacts(),
		BackupInfo:  info,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategorySnapshot, "failed to encode snapshot").Build()
	}

	// Atomic write using temporary file
	tempPath := js.path + ".tmp"
	if err := writeFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write temporary snapshot file").
			WithContext("path", tempPath).
			Build()
	}
	if err := os.Rename(tempPath, js.path); err != nil {
		_ = os.Remove(tempPath)
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to replace snapshot file").
			WithContext("path", js.path).
			Build()
	}

	log.Info("Backup state saved",
		logfields.SnapshotPath(js.path),
		logfields.TablesSaved(len(snap.Tables)))
	return snap, nil
}

func (js *JSONStore) currentTables(ctx context.Context) []string {
	tables, err := js.tables.Tables(ctx)
	if err != nil {
		observability.Logger(ctx, js.logger).Error("Failed to list database tables", logfields.Error(err))
		return nil
	}
	return tables
}

// Load reads the snapshot file.
func (js *JSONStore) Load(ctx context.Context) foundation.Result[foundation.Option[*Snapshot], error] {
	data, err := os.ReadFile(js.path)
	if errors.Is(err, fs.ErrNotExist) {
		return foundation.Ok[foundation.Option[*Snapshot], error](foundation.None[*Snapshot]())
	}
	if err != nil {
		return foundation.Err[foundation.Option[*Snapshot], error](
			ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read snapshot file").
				WithContext("path", js.path).
				Build(),
		)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return foundation.Err[foundation.Option[*Snapshot], error](
			ferrors.WrapError(err, ferrors.CategorySnapshot, "failed to decode snapshot").
				WithContext("path", js.path).
				Build(),
		)
	}
	return foundation.Ok[foundation.Option[*Snapshot], error](foundation.Some(&snap))
}

// LastBackupInfo returns the stored snapshot. Unreadable files are logged and
// reported as absent.
func (js *JSONStore) LastBackupInfo(ctx context.Context) foundation.Option[*Snapshot] {
	res := js.Load(ctx)
	if res.IsErr() {
		observability.Logger(ctx, js.logger).Warn("Failed to read backup state",
			logfields.SnapshotPath(js.path), logfields.Error(res.UnwrapErr()))
		return foundation.None[*Snapshot]()
	}
	return res.Unwrap()
}

var _ Store = (*JSONStore)(nil)
