package db

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	path string
}

// Open opens a SQLite database at the given path and applies pragmas
func Open(path string) (*DB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply pragmas
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate runs all pending migrations
func (db *DB) Migrate() error {
	migrations, err := listMigrations()
	if err != nil {
		return err
	}

	if err := db.ensureMigrationsTable(); err != nil {
		return err
	}

	for _, migration := range migrations {
		applied, err := db.migrationApplied(migration)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := db.applyMigration(migration); err != nil {
			return err
		}
	}

	return nil
}

// MigrationStatus returns lists of applied and pending migrations
func (db *DB) MigrationStatus() (applied []string, pending []string, err error) {
	migrations, err := listMigrations()
	if err != nil {
		return nil, nil, err
	}

	if err := db.ensureMigrationsTable(); err != nil {
		return nil, nil, err
	}

	for _, migration := range migrations {
		isApplied, err := db.migrationApplied(migration)
		if err != nil {
			return nil, nil, err
		}
		if isApplied {
			applied = append(applied, migration)
		} else {
			pending = append(pending, migration)
		}
	}

	return applied, pending, nil
}

// NextSequence increments and returns the named counter, used for
// friendly display IDs (PRJ-00001 and friends).
func (db *DB) NextSequence(tx *sql.Tx, name string) (int, error) {
	_, err := tx.Exec(`
		INSERT INTO sequences (name, seq) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET seq = seq + 1
	`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to bump sequence %s: %w", name, err)
	}

	var seq int
	if err := tx.QueryRow("SELECT seq FROM sequences WHERE name = ?", name).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}
	return seq, nil
}

func listMigrations() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrations = append(migrations, entry.Name())
		}
	}
	sort.Strings(migrations)
	return migrations, nil
}

func (db *DB) ensureMigrationsTable() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func (db *DB) migrationApplied(migration string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", migration).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status for %s: %w", migration, err)
	}
	return count > 0, nil
}

func (db *DB) applyMigration(migration string) error {
	content, err := migrationsFS.ReadFile(filepath.Join("migrations", migration))
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", migration, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", migration, err)
	}

	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %s: %w", migration, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", migration, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", migration, err)
	}

	return nil
}
