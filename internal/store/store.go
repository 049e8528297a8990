// Package store provides the persistence layer over SQLite: per-project
// upserts, the per-team catalog customization overlay, shared settings,
// and the local key-value cache. It handles timestamps and event
// logging so callers deal only in domain types.
package store

import (
	"database/sql"
	"fmt"

	"github.com/avforge/estq/internal/db"
	"github.com/avforge/estq/internal/events"
)

// Store is the root store that provides access to domain-specific stores.
type Store struct {
	db *db.DB

	// Domain-specific stores
	Projects       *ProjectStore
	Customizations *CustomizationStore
	Settings       *SettingsStore
	Cache          *CacheStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Projects = &ProjectStore{store: s}
	s.Customizations = &CustomizationStore{store: s}
	s.Settings = &SettingsStore{store: s}
	s.Cache = &CacheStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// withTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return err
	}

	return tx.Commit()
}
