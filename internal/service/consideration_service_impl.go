package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
	"github.com/google/uuid"
)

type considerationService struct {
	considerations repository.ConsiderationRepo
	documents      repository.DocumentRepo
	uow            db.UnitOfWork
	observer       UseCaseObserver
}

// NewConsiderationService creates the question status tracker. Every
// mutation is recorded in the append-only event log, and status reaches
// resolved only through Resolve.
func NewConsiderationService(considerations repository.ConsiderationRepo, documents repository.DocumentRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ConsiderationService {
	return &considerationService{
		considerations: considerations,
		documents:      documents,
		uow:            uow,
		observer:       useCaseObserverOrNoop(observers),
	}
}

func (s *considerationService) Propose(ctx context.Context, changeID, question string) (*domain.Consideration, error) {
	started := time.Now()
	c, err := s.propose(ctx, changeID, question)
	fields := map[string]any{"change_id": changeID}
	if c != nil {
		fields["seq"] = c.Seq
	}
	observe(ctx, s.observer, "consideration_propose", started, err, fields)
	return c, err
}

func (s *considerationService) propose(ctx context.Context, changeID, question string) (*domain.Consideration, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("change %s: question text is required", changeID)
	}
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}

	var c *domain.Consideration
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := repository.NewSQLiteConsiderationRepo(tx)
		seq, err := txRepo.NextSeq(ctx, changeID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		c = &domain.Consideration{
			ChangeID:  changeID,
			Seq:       seq,
			Question:  question,
			Status:    domain.ConsiderationPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := txRepo.Create(ctx, c); err != nil {
			return err
		}
		return txRepo.AppendEvent(ctx, newEvent(changeID, seq, domain.EventProposed, question, now))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AttachAnswer records an answer without touching status. An answer may
// be provisional or awaiting sign-off; resolution is a separate act.
func (s *considerationService) AttachAnswer(ctx context.Context, changeID string, seq int, answer string) error {
	started := time.Now()
	err := s.attachAnswer(ctx, changeID, seq, answer)
	observe(ctx, s.observer, "consideration_answer", started, err, map[string]any{
		"change_id": changeID, "seq": seq,
	})
	return err
}

func (s *considerationService) attachAnswer(ctx context.Context, changeID string, seq int, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("consideration %d of change %s: answer text is required", seq, changeID)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := repository.NewSQLiteConsiderationRepo(tx)
		txRefs := repository.NewSQLiteExternalRefRepo(tx)

		c, err := txRepo.Get(ctx, changeID, seq)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		c.Answer = answer
		c.UpdatedAt = now
		if err := txRepo.Update(ctx, c); err != nil {
			return err
		}
		if err := txRepo.AppendEvent(ctx, newEvent(changeID, seq, domain.EventAnswered, answer, now)); err != nil {
			return err
		}
		return txRefs.MarkStaleIfPosted(ctx, changeID, c.Anchor())
	})
}

// Resolve is the only operation that transitions a consideration to
// resolved, and it refuses to do so without an attached answer.
func (s *considerationService) Resolve(ctx context.Context, changeID string, seq int) error {
	started := time.Now()
	err := s.resolve(ctx, changeID, seq)
	observe(ctx, s.observer, "consideration_resolve", started, err, map[string]any{
		"change_id": changeID, "seq": seq,
	})
	return err
}

func (s *considerationService) resolve(ctx context.Context, changeID string, seq int) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := repository.NewSQLiteConsiderationRepo(tx)

		c, err := txRepo.Get(ctx, changeID, seq)
		if err != nil {
			return err
		}
		if !c.Answered() {
			return fmt.Errorf("consideration %d of change %s has no attached answer: %w",
				seq, changeID, domain.ErrAnswerMissing)
		}
		if c.Status == domain.ConsiderationResolved {
			return nil
		}

		now := time.Now().UTC()
		c.Status = domain.ConsiderationResolved
		c.UpdatedAt = now
		if err := txRepo.Update(ctx, c); err != nil {
			return err
		}
		return txRepo.AppendEvent(ctx, newEvent(changeID, seq, domain.EventResolved, "", now))
	})
}

// Reopen moves a resolved consideration back to pending review. Always
// permitted; the reason is kept in the event log.
func (s *considerationService) Reopen(ctx context.Context, changeID string, seq int, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("consideration %d of change %s: reopen reason is required", seq, changeID)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := repository.NewSQLiteConsiderationRepo(tx)

		c, err := txRepo.Get(ctx, changeID, seq)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		c.Status = domain.ConsiderationPending
		c.UpdatedAt = now
		if err := txRepo.Update(ctx, c); err != nil {
			return err
		}
		return txRepo.AppendEvent(ctx, newEvent(changeID, seq, domain.EventReopened, reason, now))
	})
}

func (s *considerationService) Get(ctx context.Context, changeID string, seq int) (*domain.Consideration, error) {
	return s.considerations.Get(ctx, changeID, seq)
}

func (s *considerationService) List(ctx context.Context, changeID string) ([]*domain.Consideration, error) {
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	return s.considerations.List(ctx, changeID)
}

func (s *considerationService) History(ctx context.Context, changeID string, seq int) ([]*domain.ConsiderationEvent, error) {
	if _, err := s.considerations.Get(ctx, changeID, seq); err != nil {
		return nil, err
	}
	return s.considerations.ListEvents(ctx, changeID, seq)
}

func newEvent(changeID string, seq int, kind domain.ConsiderationEventKind, detail string, at time.Time) *domain.ConsiderationEvent {
	return &domain.ConsiderationEvent{
		ID:       uuid.New().String(),
		ChangeID: changeID,
		Seq:      seq,
		Kind:     kind,
		Detail:   detail,
		At:       at,
	}
}
