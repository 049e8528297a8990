// Package sync provides the debounced background synchronizer: writes
// queue up during a quiet window and the latest one wins, a new request
// superseding any pending timer. An explicit flush bypasses the window.
// Remote failures degrade the status to offline; they never propagate
// into the editing path.
package sync

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the current synchronization state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
	StatusOffline Status = "offline"
)

// DefaultQuiet is the debounce window used when none is configured.
const DefaultQuiet = 2 * time.Second

// Commit is a queued write. It runs on the engine's goroutine.
type Commit func() error

// Engine debounces commits. One goroutine owns the timer and runs every
// commit, so there is never an overlapping pair of sync attempts.
type Engine struct {
	quiet time.Duration
	log   zerolog.Logger

	requests chan Commit
	flushes  chan chan error
	done     chan struct{}

	mu     sync.Mutex
	status Status

	closeOnce sync.Once
}

// New starts an engine with the given quiet window.
func New(quiet time.Duration, log zerolog.Logger) *Engine {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	e := &Engine{
		quiet:    quiet,
		log:      log,
		requests: make(chan Commit),
		flushes:  make(chan chan error),
		done:     make(chan struct{}),
		status:   StatusIdle,
	}
	go e.run()
	return e
}

// Queue schedules a commit after the quiet window. A queued commit that
// has not fired yet is replaced: last request wins.
func (e *Engine) Queue(commit Commit) {
	select {
	case e.requests <- commit:
	case <-e.done:
	}
}

// Flush runs the pending commit immediately, superseding the timer.
// Returns nil when nothing is pending.
func (e *Engine) Flush() error {
	reply := make(chan error, 1)
	select {
	case e.flushes <- reply:
		return <-reply
	case <-e.done:
		return nil
	}
}

// Status returns the engine's current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Close flushes any pending commit and stops the engine.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		_ = e.Flush()
		close(e.done)
	})
}

func (e *Engine) run() {
	var pending Commit
	timer := time.NewTimer(e.quiet)
	if !timer.Stop() {
		<-timer.C
	}

	commit := func() error {
		if pending == nil {
			return nil
		}
		err := pending()
		pending = nil
		if err != nil {
			e.setStatus(StatusOffline)
			e.log.Warn().Err(err).Msg("sync failed, continuing offline")
			return err
		}
		e.setStatus(StatusSynced)
		e.log.Debug().Msg("sync committed")
		return nil
	}

	for {
		select {
		case req := <-e.requests:
			pending = req
			e.setStatus(StatusPending)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(e.quiet)

		case <-timer.C:
			_ = commit()

		case reply := <-e.flushes:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			reply <- commit()

		case <-e.done:
			return
		}
	}
}
