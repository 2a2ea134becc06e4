package service

import (
	"context"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
)

type gateService struct {
	documents      repository.DocumentRepo
	considerations repository.ConsiderationRepo
	checklist      ChecklistService
	uow            db.UnitOfWork
	observer       UseCaseObserver
}

// NewGateService creates the phase gate controller. It decides
// progression; what must be true to progress lives in the checklist
// aggregator and the consideration tracker.
func NewGateService(documents repository.DocumentRepo, considerations repository.ConsiderationRepo, checklist ChecklistService, uow db.UnitOfWork, observers ...UseCaseObserver) GateService {
	return &gateService{
		documents:      documents,
		considerations: considerations,
		checklist:      checklist,
		uow:            uow,
		observer:       useCaseObserverOrNoop(observers),
	}
}

func (s *gateService) Advance(ctx context.Context, changeID string, to domain.Phase) (*contract.PhaseReport, error) {
	started := time.Now()
	report, err := s.advance(ctx, changeID, to)
	observe(ctx, s.observer, "gate_advance", started, err, map[string]any{
		"change_id": changeID, "to": string(to),
	})
	return report, err
}

func (s *gateService) advance(ctx context.Context, changeID string, to domain.Phase) (*contract.PhaseReport, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("change %s: unknown phase %q", changeID, to)
	}

	doc, err := s.documents.Get(ctx, changeID)
	if err != nil {
		return nil, err
	}

	// Re-invoking a phase the document has already reached is a no-op:
	// phase commands are idempotent and current_phase never moves back.
	if !doc.CurrentPhase.Before(to) {
		return s.report(ctx, changeID, doc.CurrentPhase, false)
	}

	var conditions []string

	next, ok := doc.CurrentPhase.Next()
	if !ok {
		conditions = append(conditions, fmt.Sprintf("phase %s is terminal", doc.CurrentPhase))
	} else if next != to {
		conditions = append(conditions, fmt.Sprintf("%s is not the immediate successor of %s (expected %s)",
			to, doc.CurrentPhase, next))
	}

	incomplete, err := s.checklist.ListIncomplete(ctx, changeID, doc.CurrentPhase)
	if err != nil {
		return nil, err
	}
	for _, item := range incomplete {
		conditions = append(conditions, fmt.Sprintf("checklist item %q (%s) in phase %s is not done",
			item.Description, item.ID, item.Phase))
	}

	// Pending considerations block entry into realized only: design may
	// proceed while minor questions are open, but the terminal gate
	// re-checks and refuses.
	if to == domain.PhaseRealized {
		pending, err := s.considerations.ListPending(ctx, changeID)
		if err != nil {
			return nil, err
		}
		for _, c := range pending {
			conditions = append(conditions, fmt.Sprintf("consideration %d (%q) is pending review",
				c.Seq, c.Question))
		}
	}

	if len(conditions) > 0 {
		return nil, &domain.GateViolationError{
			ChangeID:   changeID,
			From:       doc.CurrentPhase,
			To:         to,
			Conditions: conditions,
		}
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txDocs := repository.NewSQLiteDocumentRepo(tx)
		txChanges := repository.NewSQLiteChangeRepo(tx)

		if err := txDocs.SetPhase(ctx, changeID, to); err != nil {
			return err
		}

		change, err := txChanges.GetByID(ctx, changeID)
		if err != nil {
			return err
		}
		switch {
		case to == domain.PhaseRealized:
			now := time.Now().UTC()
			change.Status = domain.ChangeComplete
			change.ClosedAt = &now
			if err := txChanges.Update(ctx, change); err != nil {
				return err
			}
			return txDocs.Archive(ctx, changeID)
		case change.Status == domain.ChangePlanning && domain.PhaseAnalysis.Before(to):
			change.Status = domain.ChangeInProgress
			return txChanges.Update(ctx, change)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.report(ctx, changeID, to, true)
}

func (s *gateService) Status(ctx context.Context, changeID string) (*contract.PhaseReport, error) {
	doc, err := s.documents.Get(ctx, changeID)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, changeID, doc.CurrentPhase, false)
}

// report assembles the standard phase report: the phase the document is
// in, the open items of that phase, and every pending consideration.
func (s *gateService) report(ctx context.Context, changeID string, phase domain.Phase, advanced bool) (*contract.PhaseReport, error) {
	report := &contract.PhaseReport{
		ChangeID:     changeID,
		CurrentPhase: phase,
		Advanced:     advanced,
	}

	incomplete, err := s.checklist.ListIncomplete(ctx, changeID, phase)
	if err != nil {
		return nil, err
	}
	for _, item := range incomplete {
		report.IncompleteItems = append(report.IncompleteItems, contract.IncompleteItem{
			ID:          item.ID,
			Phase:       item.Phase,
			Description: item.Description,
		})
	}

	pending, err := s.considerations.ListPending(ctx, changeID)
	if err != nil {
		return nil, err
	}
	for _, c := range pending {
		report.PendingConsiderations = append(report.PendingConsiderations, contract.PendingConsideration{
			Seq:      c.Seq,
			Question: c.Question,
			Answered: c.Answered(),
		})
	}

	return report, nil
}
