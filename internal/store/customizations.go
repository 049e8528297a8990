package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/events"
	"github.com/avforge/estq/internal/logging"
)

// CustomizationStore handles per-team catalog customization records,
// keyed by (team_id, catalog_item_id).
type CustomizationStore struct {
	store *Store
}

// Upsert writes a customization record, stamping updated_at.
func (cs *CustomizationStore) Upsert(actor string, cust *domain.CatalogCustomization) error {
	if cust == nil || cust.TeamID == "" || cust.CatalogItemID == "" {
		return fmt.Errorf("customization requires team_id and catalog_item_id")
	}

	return cs.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var customFields interface{}
		if !cust.CustomFields.IsZero() {
			data, err := json.Marshal(cust.CustomFields)
			if err != nil {
				return fmt.Errorf("failed to marshal custom fields: %w", err)
			}
			customFields = string(data)
		}

		cust.UpdatedAt = time.Now().UTC()
		_, err := tx.Exec(`
			INSERT INTO catalog_customizations (team_id, catalog_item_id, favorite, catalog_note, deleted, custom_fields, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(team_id, catalog_item_id) DO UPDATE SET
				favorite = excluded.favorite,
				catalog_note = excluded.catalog_note,
				deleted = excluded.deleted,
				custom_fields = excluded.custom_fields,
				updated_at = excluded.updated_at
		`, cust.TeamID, cust.CatalogItemID, cust.Favorite, cust.CatalogNote,
			cust.Deleted, customFields, cust.UpdatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to upsert customization: %w", err)
		}

		return ew.LogCustomizationUpserted(tx, actor, cust)
	})
}

// ListByTeam returns all customization records for a team. A record
// whose custom_fields blob fails to parse is returned without field
// overrides rather than dropped; the overlay semantics treat it as "no
// customization" for those fields.
func (cs *CustomizationStore) ListByTeam(teamID string) ([]domain.CatalogCustomization, error) {
	rows, err := cs.store.db.Query(`
		SELECT team_id, catalog_item_id, favorite, catalog_note, deleted, custom_fields, updated_at
		FROM catalog_customizations
		WHERE team_id = ?
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customizations: %w", err)
	}
	defer rows.Close()

	var customizations []domain.CatalogCustomization
	for rows.Next() {
		var cust domain.CatalogCustomization
		var customFields sql.NullString
		var updatedAt string
		if err := rows.Scan(&cust.TeamID, &cust.CatalogItemID, &cust.Favorite,
			&cust.CatalogNote, &cust.Deleted, &customFields, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customization: %w", err)
		}

		if customFields.Valid && customFields.String != "" {
			var patch domain.FieldPatch
			if err := json.Unmarshal([]byte(customFields.String), &patch); err != nil {
				logging.Default().Warn().
					Str("catalog_item_id", cust.CatalogItemID).
					Err(err).
					Msg("malformed custom_fields payload, treating as empty")
			} else {
				cust.CustomFields = &patch
			}
		}

		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			cust.UpdatedAt = t
		}

		customizations = append(customizations, cust)
	}
	return customizations, rows.Err()
}

// Delete removes a customization record outright. The catalog item's
// soft-delete flag lives in the record itself; this is for discarding
// the overlay entirely.
func (cs *CustomizationStore) Delete(teamID, catalogItemID string) error {
	_, err := cs.store.db.Exec(
		"DELETE FROM catalog_customizations WHERE team_id = ? AND catalog_item_id = ?",
		teamID, catalogItemID)
	if err != nil {
		return fmt.Errorf("failed to delete customization: %w", err)
	}
	return nil
}
