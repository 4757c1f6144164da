package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultStateFile is the snapshot file name inside the storage directory.
	DefaultStateFile = "backup_state.json"
	// ArtifactCount is the number of configuration artifacts every snapshot records.
	ArtifactCount = 3
)

// DefaultArtifacts returns the artifact list recorded when none is configured.
func DefaultArtifacts() []string {
	return []string{"pyproject.toml", "replit.nix", ".replit"}
}

// naiveISO is the timezone-less ISO-8601 layout older snapshots were written with.
const naiveISO = "2006-01-02T15:04:05.999999999"

// Timestamp is an ISO-8601 instant. It is written as RFC 3339 with nanoseconds
// and also accepts timestamps without a zone offset (read as UTC).
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(naiveISO, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	t.Time = parsed
	return nil
}

// Snapshot is the persisted unit.
type Snapshot struct {
	Timestamp   Timestamp      `json:"last_backup_timestamp"`
	Tables      []string       `json:"database_tables"`
	ConfigFiles []string       `json:"config_files"`
	BackupInfo  map[string]any `json:"backup_info"`
}

var errNullSnapshot = errors.New("snapshot is null")

// UnmarshalJSON requires the timestamp, table and artifact keys; backup_info
// defaults to an empty object.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullSnapshot
	}

	var raw struct {
		Timestamp   *Timestamp     `json:"last_backup_timestamp"`
		Tables      *[]string      `json:"database_tables"`
		ConfigFiles *[]string      `json:"config_files"`
		BackupInfo  map[string]any `json:"backup_info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Timestamp == nil:
		return missingKey("last_backup_timestamp")
	case raw.Tables == nil:
		return missingKey("database_tables")
	case raw.ConfigFiles == nil:
		return missingKey("config_files")
	}

	s.Timestamp = *raw.Timestamp
	s.Tables = *raw.Tables
	s.ConfigFiles = *raw.ConfigFiles
	s.BackupInfo = raw.BackupInfo
	if s.BackupInfo == nil {
		s.BackupInfo = map[string]any{}
	}
	return nil
}

func missingKey(key string) error {
	return fmt.Errorf("snapshot is missing %q", key)
}
