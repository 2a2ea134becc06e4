package domain

import (
	"fmt"
	"strings"
	"time"
)

// Consideration is an open design question attached to a PlanDocument.
// Status moves to resolved only through an explicit Resolve action; an
// attached answer alone never flips status.
type Consideration struct {
	ChangeID  string
	Seq       int
	Question  string
	Answer    string
	Status    ConsiderationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Answered reports whether a non-empty answer has been attached.
func (c *Consideration) Answered() bool {
	return strings.TrimSpace(c.Answer) != ""
}

// Anchor returns the local anchor used for external references to this
// consideration, e.g. "consideration/3".
func (c *Consideration) Anchor() string {
	return ConsiderationAnchor(c.Seq)
}

// ConsiderationAnchor renders the local anchor for a consideration seq.
func ConsiderationAnchor(seq int) string {
	return fmt.Sprintf("consideration/%d", seq)
}

// ConsiderationEvent is one entry of the append-only status history of a
// consideration. Events are never updated or deleted.
type ConsiderationEvent struct {
	ID       string
	ChangeID string
	Seq      int
	Kind     ConsiderationEventKind
	Detail   string
	At       time.Time
}
