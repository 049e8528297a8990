package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestMigrate(t *testing.T) {
	database := openTestDB(t)

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Core tables exist afterwards.
	for _, table := range []string{"projects", "catalog_customizations", "settings", "kv", "event_log", "sequences"} {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing after migrate: %v", table, err)
		}
	}

	// Running again is a no-op.
	if err := database.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestMigrationStatus(t *testing.T) {
	database := openTestDB(t)

	applied, pending, err := database.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus: %v", err)
	}
	if len(applied) != 0 || len(pending) == 0 {
		t.Fatalf("fresh db: applied=%v pending=%v", applied, pending)
	}

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	applied, pending, err = database.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus: %v", err)
	}
	if len(pending) != 0 || len(applied) == 0 {
		t.Fatalf("migrated db: applied=%v pending=%v", applied, pending)
	}
}

func TestNextSequence(t *testing.T) {
	database := openTestDB(t)
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	next := func(name string) int {
		tx, err := database.Begin()
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		seq, err := database.NextSequence(tx, name)
		if err != nil {
			tx.Rollback()
			t.Fatalf("NextSequence: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		return seq
	}

	if got := next("project"); got != 1 {
		t.Fatalf("first sequence = %d, want 1", got)
	}
	if got := next("project"); got != 2 {
		t.Fatalf("second sequence = %d, want 2", got)
	}

	// Counters are independent per name.
	if got := next("package"); got != 1 {
		t.Fatalf("package sequence = %d, want 1", got)
	}
}
