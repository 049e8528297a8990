package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/events"
	"github.com/avforge/estq/internal/id"
)

// ProjectStore handles project persistence operations.
type ProjectStore struct {
	store *Store
}

// Save upserts a project: the full document is serialized into the data
// column alongside the queryable owner/team/status columns. A project
// checked out by another actor is read-only and the save is refused. A
// save whose base updated_at is older than the stored copy is refused
// as stale; callers reload and merge.
func (ps *ProjectStore) Save(actor string, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return fmt.Errorf("project has no id")
	}

	return ps.store.withTx(func(tx *sql.Tx, ew *events.Writer) error {
		var storedCheckedOut string
		var storedUpdatedAt string
		err := tx.QueryRow("SELECT checked_out_by, updated_at FROM projects WHERE uuid = ?", project.ID).
			Scan(&storedCheckedOut, &storedUpdatedAt)
		exists := err == nil
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read project: %w", err)
		}

		if exists {
			if storedCheckedOut != "" && storedCheckedOut != actor {
				return &domain.ReadOnlyError{Reason: domain.ReadOnlyCheckedOut, Holder: storedCheckedOut}
			}
			if stored, perr := time.Parse(time.RFC3339Nano, storedUpdatedAt); perr == nil {
				if !project.UpdatedAt.IsZero() && stored.After(project.UpdatedAt) {
					return &domain.StaleWriteError{ID: project.ID}
				}
			}
		}

		saved := *project
		saved.UpdatedAt = time.Now().UTC()
		if saved.FriendlyID == "" {
			seq, err := ps.store.db.NextSequence(tx, "project")
			if err != nil {
				return err
			}
			saved.FriendlyID = id.FormatProject(seq)
		}

		data, err := json.Marshal(&saved)
		if err != nil {
			return fmt.Errorf("failed to marshal project: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO projects (uuid, id, name, owner, team, status, checked_out_by, data, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(uuid) DO UPDATE SET
				name = excluded.name,
				owner = excluded.owner,
				team = excluded.team,
				status = excluded.status,
				checked_out_by = excluded.checked_out_by,
				data = excluded.data,
				updated_at = excluded.updated_at
		`, saved.ID, saved.FriendlyID, saved.Name, saved.Owner, saved.Team,
			string(saved.Status), saved.CheckedOutBy, string(data),
			saved.UpdatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}

		*project = saved
		return ew.LogProjectSaved(tx, actor, project)
	})
}

// Get loads a project by uuid or friendly id.
func (ps *ProjectStore) Get(ref string) (*domain.Project, error) {
	column := "uuid"
	if id.IsFriendlyID(ref) {
		column = "id"
	}

	var data string
	err := ps.store.db.QueryRow(
		fmt.Sprintf("SELECT data FROM projects WHERE %s = ?", column), ref).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %s", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	var project domain.Project
	if err := json.Unmarshal([]byte(data), &project); err != nil {
		return nil, fmt.Errorf("failed to parse project data: %w", err)
	}
	return &project, nil
}

// ProjectSummary is a row of the project listing.
type ProjectSummary struct {
	ID         string `json:"id"`
	FriendlyID string `json:"friendly_id"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	Team       string `json:"team,omitempty"`
	Status     string `json:"status"`
	CheckedOut string `json:"checked_out_by,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

// List returns summaries of projects visible to the team or owner.
// Either filter may be empty; both empty lists everything.
func (ps *ProjectStore) List(team, owner string) ([]ProjectSummary, error) {
	query := "SELECT uuid, id, name, owner, team, status, checked_out_by, updated_at FROM projects"
	var args []interface{}
	switch {
	case team != "" && owner != "":
		query += " WHERE team = ? OR owner = ?"
		args = append(args, team, owner)
	case team != "":
		query += " WHERE team = ?"
		args = append(args, team)
	case owner != "":
		query += " WHERE owner = ?"
		args = append(args, owner)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := ps.store.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var summaries []ProjectSummary
	for rows.Next() {
		var s ProjectSummary
		if err := rows.Scan(&s.ID, &s.FriendlyID, &s.Name, &s.Owner, &s.Team, &s.Status, &s.CheckedOut, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Checkout marks the project as held by the actor for writing. Fails if
// another actor already holds it.
func (ps *ProjectStore) Checkout(actor, ref string) error {
	project, err := ps.Get(ref)
	if err != nil {
		return err
	}
	if project.CheckedOutBy != "" && project.CheckedOutBy != actor {
		return &domain.ReadOnlyError{Reason: domain.ReadOnlyCheckedOut, Holder: project.CheckedOutBy}
	}
	project.CheckedOutBy = actor
	return ps.Save(actor, project)
}

// Release clears the check-out marker. Only the holder (or a forced
// release with an empty actor match) may do so.
func (ps *ProjectStore) Release(actor, ref string, force bool) error {
	project, err := ps.Get(ref)
	if err != nil {
		return err
	}
	if project.CheckedOutBy == "" {
		return nil
	}
	if project.CheckedOutBy != actor && !force {
		return &domain.ReadOnlyError{Reason: domain.ReadOnlyCheckedOut, Holder: project.CheckedOutBy}
	}
	holder := project.CheckedOutBy
	project.CheckedOutBy = ""
	return ps.Save(holder, project)
}
