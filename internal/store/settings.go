package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/events"
)

// SettingsStore handles the per-team (or per-owner) shared settings
// blob: catalog-scope package definitions and project templates.
type SettingsStore struct {
	store *Store
}

// Save upserts the settings for a scope (team id or owner).
func (ss *SettingsStore) Save(actor, scopeID string, settings *domain.Settings) error {
	if scopeID == "" {
		return fmt.Errorf("settings scope is required")
	}

	packages, err := json.Marshal(settings.Packages)
	if err != nil {
		return fmt.Errorf("failed to marshal packages: %w", err)
	}
	templates, err := json.Marshal(settings.Templates)
	if err != nil {
		return fmt.Errorf("failed to marshal templates: %w", err)
	}

	return ss.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		_, err := tx.Exec(`
			INSERT INTO settings (scope_id, packages, templates, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(scope_id) DO UPDATE SET
				packages = excluded.packages,
				templates = excluded.templates,
				updated_at = excluded.updated_at
		`, scopeID, string(packages), string(templates),
			time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return ew.LogSettingsSaved(tx, actor, scopeID)
	})
}

// Get loads the settings for a scope. A missing row yields empty
// settings, not an error.
func (ss *SettingsStore) Get(scopeID string) (*domain.Settings, error) {
	var packages, templates string
	err := ss.store.db.QueryRow(
		"SELECT packages, templates FROM settings WHERE scope_id = ?", scopeID).
		Scan(&packages, &templates)
	if err == sql.ErrNoRows {
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := &domain.Settings{}
	if err := json.Unmarshal([]byte(packages), &settings.Packages); err != nil {
		return nil, fmt.Errorf("failed to parse packages: %w", err)
	}
	if err := json.Unmarshal([]byte(templates), &settings.Templates); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return settings, nil
}
