package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID         = "run_id"
	KeyOperation     = "operation"
	KeySnapshotPath  = "snapshot_path"
	KeyTable         = "table"
	KeyTablesCurrent = "tables_current"
	KeyTablesSaved   = "tables_saved"
	KeyTablesAdded   = "tables_added"
	KeyTablesMissing = "tables_missing"
	KeyArtifact      = "artifact"
	KeyOutcome       = "outcome"
	KeyRevision      = "revision"
	KeyPath          = "path"
	KeyMethod        = "method"
	KeyStatus        = "status"
	KeyDurationMS    = "duration_ms"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr              { return slog.String(KeyRunID, id) }
func Operation(op string) slog.Attr          { return slog.String(KeyOperation, op) }
func SnapshotPath(p string) slog.Attr        { return slog.String(KeySnapshotPath, p) }
func Table(name string) slog.Attr            { return slog.String(KeyTable, name) }
func TablesCurrent(n int) slog.Attr          { return slog.Int(KeyTablesCurrent, n) }
func TablesSaved(n int) slog.Attr            { return slog.Int(KeyTablesSaved, n) }
func TablesAdded(names []string) slog.Attr   { return slog.Any(KeyTablesAdded, names) }
func TablesMissing(names []string) slog.Attr { return slog.Any(KeyTablesMissing, names) }
func Artifact(name string) slog.Attr         { return slog.String(KeyArtifact, name) }
func Outcome(o string) slog.Attr             { return slog.String(KeyOutcome, o) }
func Revision(r string) slog.Attr            { return slog.String(KeyRevision, r) }
func Path(p string) slog.Attr                { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr              { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr              { return slog.Int(KeyStatus, code) }
func DurationMS(ms float64) slog.Attr        { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
