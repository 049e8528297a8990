package domain

import (
	"errors"
	"fmt"
)

// ReadOnlyReason identifies which gate rejected a mutation.
type ReadOnlyReason string

const (
	// ReadOnlyCheckedOut means another actor holds the project.
	ReadOnlyCheckedOut ReadOnlyReason = "checked-out"
	// ReadOnlyViewingHistory means a historical revision is being viewed.
	ReadOnlyViewingHistory ReadOnlyReason = "viewing-history"
	// ReadOnlyRevisionLocked means the project has an open revision gate
	// pending confirmation.
	ReadOnlyRevisionLocked ReadOnlyReason = "revision-locked"
)

// ReadOnlyError is returned when a mutation is attempted on a project
// that is read-only for the caller.
type ReadOnlyError struct {
	Reason ReadOnlyReason
	Holder string // actor holding the check-out, when applicable
}

func (e *ReadOnlyError) Error() string {
	switch e.Reason {
	case ReadOnlyCheckedOut:
		if e.Holder != "" {
			return fmt.Sprintf("project is checked out by %s", e.Holder)
		}
		return "project is checked out by another user"
	case ReadOnlyViewingHistory:
		return "viewing a historical revision: close it before editing"
	case ReadOnlyRevisionLocked:
		return "project requires a revision before further edits"
	default:
		return "project is read-only"
	}
}

// IsReadOnly reports whether err is a ReadOnlyError.
func IsReadOnly(err error) bool {
	var roErr *ReadOnlyError
	return errors.As(err, &roErr)
}

// ErrRevisionNotFound is returned when a revision id does not exist in
// the project's revision log.
var ErrRevisionNotFound = errors.New("revision not found")

// ErrEmptySnapshot is returned when restoring a revision whose snapshot
// carries no state.
var ErrEmptySnapshot = errors.New("revision has no snapshot")

// StaleWriteError is returned when a remote upsert loses against a
// newer stored copy.
type StaleWriteError struct {
	ID string
}

func (e *StaleWriteError) Error() string {
	return fmt.Sprintf("stale write: a newer copy of %s exists", e.ID)
}
