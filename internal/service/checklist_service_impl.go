package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
	"github.com/google/uuid"
)

type checklistService struct {
	items     repository.ChecklistRepo
	documents repository.DocumentRepo
	observer  UseCaseObserver
}

// NewChecklistService creates the checklist aggregator. It keeps no state
// of its own; readiness is derived from the items themselves.
func NewChecklistService(items repository.ChecklistRepo, documents repository.DocumentRepo, observers ...UseCaseObserver) ChecklistService {
	return &checklistService{
		items:     items,
		documents: documents,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// AddItem creates a checklist item, or returns the existing one when an
// item with the same phase, description, and parent already exists.
// Re-running a phase therefore never duplicates its checklist.
func (s *checklistService) AddItem(ctx context.Context, changeID string, phase domain.Phase, description string, parentID *string) (*domain.ChecklistItem, error) {
	started := time.Now()
	item, err := s.addItem(ctx, changeID, phase, description, parentID)
	observe(ctx, s.observer, "checklist_add", started, err, map[string]any{
		"change_id": changeID, "phase": string(phase),
	})
	return item, err
}

func (s *checklistService) addItem(ctx context.Context, changeID string, phase domain.Phase, description string, parentID *string) (*domain.ChecklistItem, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("change %s: unknown phase %q", changeID, phase)
	}
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.items.GetByID(ctx, changeID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.Phase != phase {
			return nil, fmt.Errorf("change %s: parent item %s belongs to phase %s, not %s",
				changeID, parent.ID, parent.Phase, phase)
		}
	}

	existing, err := s.items.Find(ctx, changeID, phase, description, parentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrChecklistItemNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.ChecklistItem{
		ID:          uuid.New().String(),
		ChangeID:    changeID,
		Phase:       phase,
		Description: description,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// MarkDone completes an item. A parent with open descendants cannot be
// completed.
func (s *checklistService) MarkDone(ctx context.Context, changeID, itemID string) error {
	started := time.Now()
	err := s.markDone(ctx, changeID, itemID)
	observe(ctx, s.observer, "checklist_done", started, err, map[string]any{
		"change_id": changeID, "item_id": itemID,
	})
	return err
}

func (s *checklistService) markDone(ctx context.Context, changeID, itemID string) error {
	item, err := s.items.GetByID(ctx, changeID, itemID)
	if err != nil {
		return err
	}

	open, err := s.openDescendants(ctx, item.ID)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return fmt.Errorf("item %s (%q) of change %s has %d open child item(s): %w",
			item.ID, item.Description, changeID, len(open), domain.ErrChildrenIncomplete)
	}

	return s.items.SetDone(ctx, changeID, itemID, true)
}

func (s *checklistService) Reopen(ctx context.Context, changeID, itemID string) error {
	if _, err := s.items.GetByID(ctx, changeID, itemID); err != nil {
		return err
	}
	return s.items.SetDone(ctx, changeID, itemID, false)
}

// PhaseReady reports whether every item owned by the phase, including
// all descendants, is done.
func (s *checklistService) PhaseReady(ctx context.Context, changeID string, phase domain.Phase) (bool, error) {
	incomplete, err := s.ListIncomplete(ctx, changeID, phase)
	if err != nil {
		return false, err
	}
	return len(incomplete) == 0, nil
}

func (s *checklistService) List(ctx context.Context, changeID string) ([]*domain.ChecklistItem, error) {
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	return s.items.ListByChange(ctx, changeID)
}

func (s *checklistService) ListByPhase(ctx context.Context, changeID string, phase domain.Phase) ([]*domain.ChecklistItem, error) {
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	return s.items.ListByPhase(ctx, changeID, phase)
}

func (s *checklistService) ListIncomplete(ctx context.Context, changeID string, phase domain.Phase) ([]*domain.ChecklistItem, error) {
	all, err := s.ListByPhase(ctx, changeID, phase)
	if err != nil {
		return nil, err
	}
	var open []*domain.ChecklistItem
	for _, item := range all {
		if !item.Done {
			open = append(open, item)
		}
	}
	return open, nil
}

// openDescendants walks the child tree of an item and collects every
// descendant that is not done.
func (s *checklistService) openDescendants(ctx context.Context, itemID string) ([]*domain.ChecklistItem, error) {
	children, err := s.items.ListChildren(ctx, itemID)
	if err != nil {
		return nil, err
	}
	var open []*domain.ChecklistItem
	for _, child := range children {
		if !child.Done {
			open = append(open, child)
		}
		deeper, err := s.openDescendants(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		open = append(open, deeper...)
	}
	return open, nil
}
