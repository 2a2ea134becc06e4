package repository

import (
	"context"
	"time"

	"github.com/draftctl/draftctl/internal/domain"
)

// RegistryRow is the joined registry view shown by change listings: the
// registry record plus the document's current phase when one exists.
type RegistryRow struct {
	Change       domain.Change
	CurrentPhase domain.Phase
}

type ChangeRepo interface {
	Create(ctx context.Context, c *domain.Change) error
	GetByID(ctx context.Context, id string) (*domain.Change, error)
	List(ctx context.Context, includeClosed bool) ([]RegistryRow, error)
	Update(ctx context.Context, c *domain.Change) error
	Delete(ctx context.Context, id string) error
}

// AllocationRepo is the append-only log of every identifier ever issued.
// Rows are never deleted, so a retired identifier can never be reissued.
type AllocationRepo interface {
	IssuedSeqs(ctx context.Context, changeType domain.ChangeType) ([]int, error)
	Record(ctx context.Context, changeID string, changeType domain.ChangeType, seq int) error
}

type DocumentRepo interface {
	Create(ctx context.Context, d *domain.PlanDocument) error
	Get(ctx context.Context, changeID string) (*domain.PlanDocument, error)
	SetPhase(ctx context.Context, changeID string, phase domain.Phase) error
	Archive(ctx context.Context, changeID string) error
	CreateSection(ctx context.Context, s *domain.SectionContent, orderIndex int) error
	GetSection(ctx context.Context, changeID, name string) (*domain.SectionContent, error)
	ListSections(ctx context.Context, changeID string) ([]*domain.SectionContent, error)
	UpdateSection(ctx context.Context, s *domain.SectionContent) error
}

type ChecklistRepo interface {
	Create(ctx context.Context, item *domain.ChecklistItem) error
	GetByID(ctx context.Context, changeID, id string) (*domain.ChecklistItem, error)
	Find(ctx context.Context, changeID string, phase domain.Phase, description string, parentID *string) (*domain.ChecklistItem, error)
	ListByPhase(ctx context.Context, changeID string, phase domain.Phase) ([]*domain.ChecklistItem, error)
	ListByChange(ctx context.Context, changeID string) ([]*domain.ChecklistItem, error)
	ListChildren(ctx context.Context, id string) ([]*domain.ChecklistItem, error)
	SetDone(ctx context.Context, changeID, id string, done bool) error
}

type ConsiderationRepo interface {
	NextSeq(ctx context.Context, changeID string) (int, error)
	Create(ctx context.Context, c *domain.Consideration) error
	Get(ctx context.Context, changeID string, seq int) (*domain.Consideration, error)
	List(ctx context.Context, changeID string) ([]*domain.Consideration, error)
	ListPending(ctx context.Context, changeID string) ([]*domain.Consideration, error)
	Update(ctx context.Context, c *domain.Consideration) error
	AppendEvent(ctx context.Context, e *domain.ConsiderationEvent) error
	ListEvents(ctx context.Context, changeID string, seq int) ([]*domain.ConsiderationEvent, error)
}

type ExternalRefRepo interface {
	Create(ctx context.Context, ref *domain.ExternalReference) error
	Get(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error)
	List(ctx context.Context, changeID string) ([]*domain.ExternalReference, error)
	SetState(ctx context.Context, changeID, anchor string, state domain.SyncState, postedAt *time.Time) error
	MarkStaleIfPosted(ctx context.Context, changeID, anchor string) error
}
