package domain

import "time"

// ExternalReference links a document section or consideration to one
// comment-like record in an external tracker. The mapping is 1:1 per
// anchor: a resync edits the same remote record rather than posting a
// duplicate.
type ExternalReference struct {
	ChangeID     string
	LocalAnchor  string
	ExternalID   string
	URL          string
	SyncState    SyncState
	LastPostedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
