package ledger

import (
	"path/filepath"
	"testing"

	"backlightd/internal/db"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.DB, "test-run")
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Record("sync", 468, 127, ""); err != nil {
		t.Fatal(err)
	}
	if err := l.Record("write_failed", 500, 136, "device busy"); err != nil {
		t.Fatal(err)
	}

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Newest first
	if entries[0].Event != "write_failed" || entries[0].Detail != "device busy" {
		t.Errorf("unexpected newest entry %+v", entries[0])
	}
	if entries[1].Event != "sync" || entries[1].SourceValue != 468 || entries[1].TargetValue != 127 {
		t.Errorf("unexpected entry %+v", entries[1])
	}
	if entries[0].RunID != "test-run" {
		t.Errorf("run id = %q", entries[0].RunID)
	}
}

func TestCleanupKeepsRecentEntries(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Record("sync", 100, 50, ""); err != nil {
		t.Fatal(err)
	}

	removed, err := l.Cleanup(7)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("cleanup removed %d fresh entries", removed)
	}

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after cleanup, want 1", len(entries))
	}
}
