package events

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/avforge/estq/internal/domain"
)

// Writer handles writing events to the event log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogEvent writes an event to the event log
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (actor, resource_type, resource_id, event_type, payload)
		VALUES (?, ?, ?, ?, ?)
	`

	executor := w.getExecutor(tx)
	_, err := executor.Exec(query, event.Actor, event.ResourceType, event.ResourceID, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogProjectSaved logs a project upsert event
func (w *Writer) LogProjectSaved(tx *sql.Tx, actor string, project *domain.Project) error {
	payload, err := json.Marshal(map[string]interface{}{
		"name":   project.Name,
		"status": project.Status,
	})
	if err != nil {
		return err
	}

	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		Actor:        actor,
		ResourceType: "project",
		ResourceID:   project.ID,
		EventType:    "project.saved",
		Payload:      &payloadStr,
	})
}

// LogCustomizationUpserted logs a catalog customization upsert event
func (w *Writer) LogCustomizationUpserted(tx *sql.Tx, actor string, cust *domain.CatalogCustomization) error {
	payload, err := json.Marshal(map[string]interface{}{
		"team_id":  cust.TeamID,
		"favorite": cust.Favorite,
		"deleted":  cust.Deleted,
	})
	if err != nil {
		return err
	}

	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		Actor:        actor,
		ResourceType: "customization",
		ResourceID:   cust.CatalogItemID,
		EventType:    "customization.upserted",
		Payload:      &payloadStr,
	})
}

// LogRevisionCreated logs a revision snapshot event
func (w *Writer) LogRevisionCreated(tx *sql.Tx, actor, projectID string, rev *domain.Revision) error {
	payload, err := json.Marshal(map[string]interface{}{
		"project_id": projectID,
		"label":      rev.Label,
	})
	if err != nil {
		return err
	}

	payloadStr := string(payload)
	return w.LogEvent(tx, &domain.Event{
		Actor:        actor,
		ResourceType: "revision",
		ResourceID:   rev.ID,
		EventType:    "revision.created",
		Payload:      &payloadStr,
	})
}

// LogSettingsSaved logs a settings upsert event
func (w *Writer) LogSettingsSaved(tx *sql.Tx, actor, scopeID string) error {
	return w.LogEvent(tx, &domain.Event{
		Actor:        actor,
		ResourceType: "settings",
		ResourceID:   scopeID,
		EventType:    "settings.saved",
	})
}

// getExecutor returns the appropriate executor (tx or db)
func (w *Writer) getExecutor(tx *sql.Tx) interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}
