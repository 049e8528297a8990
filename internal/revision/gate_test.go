package revision

import (
	"errors"
	"testing"
	"time"

	"github.com/avforge/estq/internal/domain"
)

func TestGatePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		checkedOut string
		viewing    string
		status     domain.ProjectStatus
		actor      string
		wantReason domain.ReadOnlyReason
	}{
		{
			name:       "checked out by another actor trumps everything",
			checkedOut: "bob",
			viewing:    "r1",
			status:     domain.StatusProposalSubmitted,
			actor:      "alice",
			wantReason: domain.ReadOnlyCheckedOut,
		},
		{
			name:       "viewing history trumps the revision lock",
			viewing:    "r1",
			status:     domain.StatusProposalSubmitted,
			actor:      "alice",
			wantReason: domain.ReadOnlyViewingHistory,
		},
		{
			name:       "revision lock on its own",
			status:     domain.StatusProposalSubmitted,
			actor:      "alice",
			wantReason: domain.ReadOnlyRevisionLocked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.Project{Status: tt.status, CheckedOutBy: tt.checkedOut}
			err := Gate(p, GateContext{Actor: tt.actor, ViewingRevision: tt.viewing})
			var roErr *domain.ReadOnlyError
			if !errors.As(err, &roErr) {
				t.Fatalf("expected ReadOnlyError, got %v", err)
			}
			if roErr.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, roErr.Reason)
			}
		})
	}
}

func TestGatePasses(t *testing.T) {
	// The holder of the check-out writes freely.
	p := &domain.Project{Status: domain.StatusDraft, CheckedOutBy: "alice"}
	if err := Gate(p, GateContext{Actor: "alice"}); err != nil {
		t.Fatalf("holder must pass, got %v", err)
	}

	// An open revision satisfies the lock.
	p = &domain.Project{Status: domain.StatusActive, CurrentRevision: "r1"}
	if err := Gate(p, GateContext{Actor: "alice"}); err != nil {
		t.Fatalf("open revision must pass, got %v", err)
	}

	if err := Gate(nil, GateContext{}); err != nil {
		t.Fatalf("nil project must pass, got %v", err)
	}
}

func TestGateHolderReported(t *testing.T) {
	p := &domain.Project{CheckedOutBy: "bob"}
	err := Gate(p, GateContext{Actor: "alice"})
	var roErr *domain.ReadOnlyError
	if !errors.As(err, &roErr) || roErr.Holder != "bob" {
		t.Fatalf("expected holder bob, got %v", err)
	}
}

func TestMutateAppliesWhenUnlocked(t *testing.T) {
	p := &domain.Project{ID: "p1", Status: domain.StatusDraft, Name: "before"}

	out, err := Mutate(p, GateContext{Actor: "alice"}, false, func(p *domain.Project) *domain.Project {
		next := *p
		next.Name = "after"
		return &next
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if out.Name != "after" || p.Name != "before" {
		t.Fatalf("unexpected mutation result: out=%q in=%q", out.Name, p.Name)
	}
}

func TestMutateRefusedByGates(t *testing.T) {
	p := &domain.Project{Status: domain.StatusProposalSubmitted}

	_, err := Mutate(p, GateContext{Actor: "alice"}, false, func(p *domain.Project) *domain.Project {
		t.Fatal("mutation must not run behind a closed gate")
		return p
	})
	var roErr *domain.ReadOnlyError
	if !errors.As(err, &roErr) || roErr.Reason != domain.ReadOnlyRevisionLocked {
		t.Fatalf("expected revision-locked refusal, got %v", err)
	}

	// Auto-snapshot never bypasses the other gates.
	p = &domain.Project{CheckedOutBy: "bob"}
	_, err = Mutate(p, GateContext{Actor: "alice"}, true, func(p *domain.Project) *domain.Project { return p })
	if !errors.As(err, &roErr) || roErr.Reason != domain.ReadOnlyCheckedOut {
		t.Fatalf("expected checked-out refusal, got %v", err)
	}
}

func TestMutateAutoSnapshot(t *testing.T) {
	fixed := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	p := &domain.Project{
		ID:     "p1",
		Status: domain.StatusActive,
		Locations: []*domain.LocationNode{
			{ID: "n1", Name: "Main", Items: []domain.Item{{ID: "i1", Qty: 1}}},
		},
	}

	out, err := Mutate(p, GateContext{Actor: "alice"}, true, func(p *domain.Project) *domain.Project {
		next := *p
		next.Name = "edited"
		return &next
	})
	if err != nil {
		t.Fatalf("Mutate with auto-snapshot: %v", err)
	}

	if len(out.Revisions) != 1 {
		t.Fatalf("expected a revision created before the edit, got %d", len(out.Revisions))
	}
	rev := out.Revisions[0]
	if rev.CreatedBy != "alice" || !rev.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected auto revision: %+v", rev)
	}
	if out.CurrentRevision != rev.ID {
		t.Fatal("auto revision must open the project for edits")
	}
	if out.Name != "edited" {
		t.Fatal("mutation must apply after the snapshot")
	}
}
