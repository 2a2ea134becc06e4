package domain

import "time"

// ChecklistItem is a granular unit of phase work. Items may nest one
// level or more via ParentID; a parent cannot be done while any child
// is not done.
type ChecklistItem struct {
	ID          string
	ChangeID    string
	Phase       Phase
	Description string
	Done        bool
	ParentID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
