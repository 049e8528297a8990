// Package revision implements change-control snapshots for projects: an
// append-only log of immutable copies of the location tree and
// project-scope packages, with a "current open revision" marker that
// gates further edits on submitted projects.
package revision

import (
	"fmt"
	"time"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/id"
)

// RequiresRevision reports whether the project must be snapshotted
// before its next edit: it is in a post-submission status and has no
// open revision yet.
func RequiresRevision(p *domain.Project) bool {
	if p == nil {
		return false
	}
	return p.Status.IsPostSubmission() && p.CurrentRevision == ""
}

// Create captures the project's live locations and packages into a new
// immutable revision, appends it to the log, and marks it as the
// current open revision. Returns a new project; the input is untouched.
func Create(p *domain.Project, label, notes, createdBy string, now time.Time) (*domain.Project, *domain.Revision) {
	if label == "" {
		label = fmt.Sprintf("Revision %d", len(p.Revisions)+1)
	}

	rev := &domain.Revision{
		ID:        id.New(),
		Label:     label,
		Notes:     notes,
		CreatedAt: now,
		CreatedBy: createdBy,
		Snapshot: domain.RevisionSnapshot{
			Locations: domain.CloneNodes(p.Locations),
			Packages:  domain.CloneDefinitions(p.Packages),
		},
	}

	next := *p
	next.Revisions = append(append([]*domain.Revision{}, p.Revisions...), rev)
	next.CurrentRevision = rev.ID
	return &next, rev
}

// Close clears the current-revision marker, unlocking direct edits.
// The revision log is untouched.
func Close(p *domain.Project) *domain.Project {
	next := *p
	next.CurrentRevision = ""
	return &next
}

// Find returns the revision with the given id, or nil.
func Find(p *domain.Project, revisionID string) *domain.Revision {
	for _, rev := range p.Revisions {
		if rev != nil && rev.ID == revisionID {
			return rev
		}
	}
	return nil
}

// Restore replaces the project's live locations and packages with a
// deep copy of the target revision's snapshot. The state just before
// restore is first captured as a "Pre-restore snapshot" revision, so a
// restore is always reversible. The restored project starts unlocked.
func Restore(p *domain.Project, revisionID, createdBy string, now time.Time) (*domain.Project, error) {
	target := Find(p, revisionID)
	if target == nil {
		return nil, domain.ErrRevisionNotFound
	}
	if target.Snapshot.Locations == nil && target.Snapshot.Packages == nil {
		return nil, domain.ErrEmptySnapshot
	}

	next, _ := Create(p, "Pre-restore snapshot",
		fmt.Sprintf("State before restoring %q", target.Label), createdBy, now)

	snapshot := domain.CloneSnapshot(target.Snapshot)
	next.Locations = snapshot.Locations
	next.Packages = snapshot.Packages
	next.CurrentRevision = ""
	next.UpdatedAt = now
	return next, nil
}
