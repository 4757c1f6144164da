package state

import (
	"context"

	"git.home.luguber.info/inful/backupstate/internal/foundation"
)

// SnapshotReader reads the live snapshot.
type SnapshotReader interface {
	// Load distinguishes a missing snapshot (Ok(None)) from an unreadable one (Err).
	Load(ctx context.Context) foundation.Result[foundation.Option[*Snapshot], error]

	// LastBackupInfo returns the snapshot, or None when it is missing or unreadable.
	LastBackupInfo(ctx context.Context) foundation.Option[*Snapshot]

	// Exists reports whether the snapshot file exists.
	Exists() bool
}

// SnapshotWriter replaces the live snapshot.
type SnapshotWriter interface {
	// SaveSnapshot captures the current inventory and writes it.
	SaveSnapshot(ctx context.Context, backupInfo map[string]any) foundation.Result[*Snapshot, error]

	// Save is SaveSnapshot reduced to success/failure; failures are logged.
	Save(ctx context.Context, backupInfo map[string]any) bool
}

// Store is the full snapshot store.
type Store interface {
	SnapshotReader
	SnapshotWriter

	// EnsureDirectories creates the storage directory tree.
	EnsureDirectories() error

	// Path returns the snapshot file path.
	Path() string
}
