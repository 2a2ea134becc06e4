package service

import (
	"context"

	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
)

// AllocatorService issues change identifiers and registers new changes.
type AllocatorService interface {
	// Allocate picks the smallest unused sequence for the change type,
	// registers the Change, and initializes its skeleton document.
	// Allocation conflicts are retried internally with backoff.
	Allocate(ctx context.Context, req contract.AllocateRequest) (*domain.Change, error)
}

// ChangeService manages registry records after allocation.
type ChangeService interface {
	GetByID(ctx context.Context, id string) (*domain.Change, error)
	List(ctx context.Context, includeClosed bool) ([]repository.RegistryRow, error)
	Delete(ctx context.Context, id string) error
}

// DocumentService is the section-addressed, phase-owned write surface of
// a plan document.
type DocumentService interface {
	Get(ctx context.Context, changeID string) (*domain.PlanDocument, error)
	GetSection(ctx context.Context, changeID, name string) (*domain.SectionContent, error)
	ListSections(ctx context.Context, changeID string) ([]*domain.SectionContent, error)
	WriteSection(ctx context.Context, changeID, name, body string, phase domain.Phase) error
}

// GateService enforces phase ordering and completion preconditions.
type GateService interface {
	// Advance moves the document into to, or fails with a
	// GateViolationError naming every unmet condition.
	Advance(ctx context.Context, changeID string, to domain.Phase) (*contract.PhaseReport, error)

	// Status reports the document's standing without advancing.
	Status(ctx context.Context, changeID string) (*contract.PhaseReport, error)
}

// ChecklistService tracks fine-grained completion items per phase.
type ChecklistService interface {
	AddItem(ctx context.Context, changeID string, phase domain.Phase, description string, parentID *string) (*domain.ChecklistItem, error)
	MarkDone(ctx context.Context, changeID, itemID string) error
	Reopen(ctx context.Context, changeID, itemID string) error
	PhaseReady(ctx context.Context, changeID string, phase domain.Phase) (bool, error)
	List(ctx context.Context, changeID string) ([]*domain.ChecklistItem, error)
	ListByPhase(ctx context.Context, changeID string, phase domain.Phase) ([]*domain.ChecklistItem, error)
	ListIncomplete(ctx context.Context, changeID string, phase domain.Phase) ([]*domain.ChecklistItem, error)
}

// ConsiderationService manages the question lifecycle. Resolution is a
// deliberate act: attaching an answer never changes status.
type ConsiderationService interface {
	Propose(ctx context.Context, changeID, question string) (*domain.Consideration, error)
	AttachAnswer(ctx context.Context, changeID string, seq int, answer string) error
	Resolve(ctx context.Context, changeID string, seq int) error
	Reopen(ctx context.Context, changeID string, seq int, reason string) error
	Get(ctx context.Context, changeID string, seq int) (*domain.Consideration, error)
	List(ctx context.Context, changeID string) ([]*domain.Consideration, error)
	History(ctx context.Context, changeID string, seq int) ([]*domain.ConsiderationEvent, error)
}

// ResolverService keeps external tracker comments in step with local
// document content. It performs no retries itself; callers retry
// ErrExternalUnavailable explicitly.
type ResolverService interface {
	Post(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error)
	Resync(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error)
	SyncStatus(ctx context.Context, changeID string) (*contract.SyncReport, error)
}
