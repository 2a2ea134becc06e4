package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRegistryUnavailable indicates the identifier registry could not
	// be read.
	ErrRegistryUnavailable = errors.New("identifier registry unavailable")

	// ErrAllocationConflict indicates another allocation claimed the same
	// sequence number between read and commit. Retryable with the next
	// candidate.
	ErrAllocationConflict = errors.New("identifier allocation conflict")

	// ErrChangeNotFound indicates the change ID has no registry record.
	ErrChangeNotFound = errors.New("change not found")

	// ErrDocumentNotFound indicates the change ID has no plan document.
	ErrDocumentNotFound = errors.New("plan document not found")

	// ErrUnknownSection indicates a section name outside the template.
	ErrUnknownSection = errors.New("unknown section")

	// ErrDocumentArchived indicates a write attempted on a document that
	// has been archived by realization.
	ErrDocumentArchived = errors.New("plan document archived")

	// ErrNotSectionOwner indicates a write attempted by a phase that does
	// not own the section.
	ErrNotSectionOwner = errors.New("phase does not own section")

	// ErrChecklistItemNotFound indicates an unknown checklist item ID.
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrChildrenIncomplete indicates a parent item cannot be marked done
	// while child items remain open.
	ErrChildrenIncomplete = errors.New("child items incomplete")

	// ErrConsiderationNotFound indicates an unknown consideration seq.
	ErrConsiderationNotFound = errors.New("consideration not found")

	// ErrAnswerMissing indicates a resolve attempt on a consideration with
	// no attached answer.
	ErrAnswerMissing = errors.New("answer missing")

	// ErrReferenceNotFound indicates no external reference exists for the
	// given anchor.
	ErrReferenceNotFound = errors.New("external reference not found")

	// ErrExternalUnavailable indicates the external tracker could not be
	// reached. Retryable; sync state stays stale until a repost succeeds.
	ErrExternalUnavailable = errors.New("external tracker unavailable")

	// ErrPhaseGateViolation is the sentinel matched by errors.Is for any
	// GateViolationError.
	ErrPhaseGateViolation = errors.New("phase gate violation")
)

// GateViolationError reports a refused phase transition together with
// every unmet condition, so the caller can correct precisely rather than
// re-derive why progression was blocked.
type GateViolationError struct {
	ChangeID   string
	From       Phase
	To         Phase
	Conditions []string
}

func (e *GateViolationError) Error() string {
	return fmt.Sprintf("change %s: cannot advance %s -> %s: %s",
		e.ChangeID, e.From, e.To, strings.Join(e.Conditions, "; "))
}

func (e *GateViolationError) Is(target error) bool {
	return target == ErrPhaseGateViolation
}
