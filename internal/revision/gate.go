package revision

import (
	"time"

	"github.com/avforge/estq/internal/domain"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// GateContext carries the caller-side state the gates need beyond the
// project itself.
type GateContext struct {
	// Actor is the current actor; a project checked out by anyone else
	// is read-only.
	Actor string

	// ViewingRevision is non-empty while a historical snapshot is open
	// read-only. The CLI has no persistent viewing mode, so this gate is
	// reached through the library API only.
	ViewingRevision string
}

// Gate is the single write choke point: every mutation entry point
// calls it before dispatch. It checks the three independent read-only
// gates in precedence order (checked out by another actor, viewing a
// historical revision, revision lock pending) and returns a
// ReadOnlyError on the first that trips.
//
// The revision-lock gate trips when the project's status requires
// revision control and no revision has been opened yet; callers handle
// it by creating a revision (see Create) and retrying the mutation.
func Gate(p *domain.Project, ctx GateContext) error {
	if p == nil {
		return nil
	}
	if p.CheckedOutBy != "" && p.CheckedOutBy != ctx.Actor {
		return &domain.ReadOnlyError{Reason: domain.ReadOnlyCheckedOut, Holder: p.CheckedOutBy}
	}
	if ctx.ViewingRevision != "" {
		return &domain.ReadOnlyError{Reason: domain.ReadOnlyViewingHistory}
	}
	if RequiresRevision(p) {
		return &domain.ReadOnlyError{Reason: domain.ReadOnlyRevisionLocked}
	}
	return nil
}

// Mutate runs fn against the project after the gates pass, returning
// the mutated copy. When the revision-lock gate trips and autoSnapshot
// is set, a revision is created first and the mutation applied to the
// snapshotted project, mirroring the confirm path of the revision
// prompt flow.
func Mutate(p *domain.Project, ctx GateContext, autoSnapshot bool, fn func(*domain.Project) *domain.Project) (*domain.Project, error) {
	err := Gate(p, ctx)
	if err != nil {
		roErr, ok := err.(*domain.ReadOnlyError)
		if !ok || roErr.Reason != domain.ReadOnlyRevisionLocked || !autoSnapshot {
			return nil, err
		}
		p, _ = Create(p, "", "Snapshot before edit", ctx.Actor, timeNow())
	}
	return fn(p), nil
}
