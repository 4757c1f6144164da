package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r-1", RunID("r-1")},
		{"Operation", KeyOperation, "verify", Operation("verify")},
		{"SnapshotPath", KeySnapshotPath, "backups/backup_state.json", SnapshotPath("backups/backup_state.json")},
		{"Table", KeyTable, "users", Table("users")},
		{"Artifact", KeyArtifact, ".replit", Artifact(".replit")},
		{"Outcome", KeyOutcome, "drift", Outcome("drift")},
		{"Revision", KeyRevision, "abc123", Revision("abc123")},
		{"Path", KeyPath, "/health", Path("/health")},
		{"Method", KeyMethod, "GET", Method("GET")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric helpers.
func TestNumericHelpers(t *testing.T) {
	if v := TablesCurrent(3); v.Key != KeyTablesCurrent || v.Value.Int64() != 3 {
		t.Fatalf("TablesCurrent mismatch: %v", v)
	}
	if v := TablesSaved(2); v.Key != KeyTablesSaved || v.Value.Int64() != 2 {
		t.Fatalf("TablesSaved mismatch: %v", v)
	}
	if v := Status(200); v.Key != KeyStatus {
		t.Fatalf("Status key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS || v.Value.Float64() != 12.5 {
		t.Fatalf("DurationMS mismatch: %v", v)
	}
}

func TestTableListHelpers(t *testing.T) {
	added := TablesAdded([]string{"orders"})
	if added.Key != KeyTablesAdded {
		t.Fatalf("TablesAdded key mismatch: %s", added.Key)
	}
	if got, ok := added.Value.Any().([]string); !ok || len(got) != 1 || got[0] != "orders" {
		t.Fatalf("TablesAdded value mismatch: %v", added.Value.Any())
	}
	if missing := TablesMissing(nil); missing.Key != KeyTablesMissing {
		t.Fatalf("TablesMissing key mismatch: %s", missing.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errors.New("err-test"))
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}
