package sync

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestQueueCommitsAfterQuietWindow(t *testing.T) {
	e := New(20*time.Millisecond, zerolog.Nop())
	defer e.Close()

	var commits int32
	e.Queue(func() error {
		atomic.AddInt32(&commits, 1)
		return nil
	})

	if got := e.Status(); got != StatusPending {
		t.Fatalf("status after queue = %s, want pending", got)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&commits) == 1 })
	waitFor(t, func() bool { return e.Status() == StatusSynced })
}

func TestLastRequestWins(t *testing.T) {
	e := New(30*time.Millisecond, zerolog.Nop())
	defer e.Close()

	var first, second int32
	e.Queue(func() error {
		atomic.AddInt32(&first, 1)
		return nil
	})
	e.Queue(func() error {
		atomic.AddInt32(&second, 1)
		return nil
	})

	waitFor(t, func() bool { return atomic.LoadInt32(&second) == 1 })
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&first) != 0 {
		t.Fatal("superseded commit must never run")
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	e := New(time.Hour, zerolog.Nop())
	defer e.Close()

	var commits int32
	e.Queue(func() error {
		atomic.AddInt32(&commits, 1)
		return nil
	})

	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if atomic.LoadInt32(&commits) != 1 {
		t.Fatal("flush must run the pending commit without waiting")
	}
	if got := e.Status(); got != StatusSynced {
		t.Fatalf("status after flush = %s, want synced", got)
	}

	// Nothing pending: flush is a no-op.
	if err := e.Flush(); err != nil {
		t.Fatalf("empty Flush: %v", err)
	}
	if atomic.LoadInt32(&commits) != 1 {
		t.Fatal("empty flush must not rerun the commit")
	}
}

func TestFailureGoesOffline(t *testing.T) {
	e := New(time.Hour, zerolog.Nop())
	defer e.Close()

	e.Queue(func() error { return errors.New("remote unreachable") })

	if err := e.Flush(); err == nil {
		t.Fatal("flush must surface the commit error")
	}
	if got := e.Status(); got != StatusOffline {
		t.Fatalf("status after failure = %s, want offline", got)
	}

	// A later successful commit recovers.
	e.Queue(func() error { return nil })
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := e.Status(); got != StatusSynced {
		t.Fatalf("status after recovery = %s, want synced", got)
	}
}

func TestCloseFlushesPending(t *testing.T) {
	e := New(time.Hour, zerolog.Nop())

	var commits int32
	e.Queue(func() error {
		atomic.AddInt32(&commits, 1)
		return nil
	})

	e.Close()
	if atomic.LoadInt32(&commits) != 1 {
		t.Fatal("close must flush the pending commit")
	}

	// Queue and flush after close are safe no-ops.
	e.Queue(func() error {
		atomic.AddInt32(&commits, 1)
		return nil
	})
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush after close: %v", err)
	}
	if atomic.LoadInt32(&commits) != 1 {
		t.Fatal("nothing may commit after close")
	}
	e.Close()
}

func TestDefaultQuietWindow(t *testing.T) {
	e := New(0, zerolog.Nop())
	defer e.Close()
	if e.quiet != DefaultQuiet {
		t.Fatalf("quiet = %v, want %v", e.quiet, DefaultQuiet)
	}
}
