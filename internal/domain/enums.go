package domain

type ChangeType string

const (
	ChangeFeature     ChangeType = "feature"
	ChangeFix         ChangeType = "fix"
	ChangeEnhancement ChangeType = "enhancement"
	ChangeChore       ChangeType = "chore"
)

// ValidChangeTypes is the canonical set of accepted change type strings.
// Additional types may be registered at startup from configuration.
var ValidChangeTypes = map[string]bool{
	"feature": true, "fix": true, "enhancement": true, "chore": true,
}

// RegisterChangeType adds a change type to the accepted set. Types are
// lowercase identifiers; anything else is ignored.
func RegisterChangeType(t string) {
	if changeTypePattern.MatchString(t) {
		ValidChangeTypes[t] = true
	}
}

type ChangeStatus string

const (
	ChangePlanning   ChangeStatus = "planning"
	ChangeInProgress ChangeStatus = "in_progress"
	ChangeComplete   ChangeStatus = "complete"
)

type ConsiderationStatus string

const (
	ConsiderationPending  ConsiderationStatus = "pending_review"
	ConsiderationResolved ConsiderationStatus = "resolved"
)

type ConsiderationEventKind string

const (
	EventProposed ConsiderationEventKind = "proposed"
	EventAnswered ConsiderationEventKind = "answered"
	EventResolved ConsiderationEventKind = "resolved"
	EventReopened ConsiderationEventKind = "reopened"
)

type SyncState string

const (
	SyncUnposted SyncState = "unposted"
	SyncPosted   SyncState = "posted"
	SyncStale    SyncState = "stale"
)
