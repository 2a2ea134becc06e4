// Package contract defines the request and response shapes exchanged
// between the CLI surface and the service layer.
package contract

import "github.com/draftctl/draftctl/internal/domain"

// AllocateRequest creates a new change and its skeleton document.
type AllocateRequest struct {
	Type      domain.ChangeType
	Title     string
	Milestone string
}

// IncompleteItem is one open checklist item in a phase report.
type IncompleteItem struct {
	ID          string
	Phase       domain.Phase
	Description string
}

// PendingConsideration is one unresolved consideration in a phase report.
type PendingConsideration struct {
	Seq      int
	Question string
	Answered bool
}

// PhaseReport is the standard completion report of every phase command:
// where the document stands, what still blocks progression, and whether
// the next gate would currently pass.
type PhaseReport struct {
	ChangeID              string
	CurrentPhase          domain.Phase
	Advanced              bool
	IncompleteItems       []IncompleteItem
	PendingConsiderations []PendingConsideration
}

// Blocked reports whether anything prevents the next transition.
func (r *PhaseReport) Blocked() bool {
	return len(r.IncompleteItems) > 0 || len(r.PendingConsiderations) > 0
}

// SyncReport summarizes the external reference state of one document.
type SyncReport struct {
	ChangeID string
	Refs     []SyncRefState
}

// SyncRefState is one anchor's sync standing.
type SyncRefState struct {
	LocalAnchor string
	ExternalID  string
	URL         string
	SyncState   domain.SyncState
}
