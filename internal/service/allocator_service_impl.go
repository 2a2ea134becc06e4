package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
)

const maxAllocationAttempts = 8

type allocatorService struct {
	uow      db.UnitOfWork
	template *domain.SectionTemplate
	format   domain.IDFormat
	observer UseCaseObserver
}

// NewAllocatorService creates the identifier allocator. Each allocation
// registers the change and initializes its skeleton document in one
// transaction.
func NewAllocatorService(uow db.UnitOfWork, template *domain.SectionTemplate, format domain.IDFormat, observers ...UseCaseObserver) AllocatorService {
	return &allocatorService{
		uow:      uow,
		template: template,
		format:   format,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *allocatorService) Allocate(ctx context.Context, req contract.AllocateRequest) (*domain.Change, error) {
	started := time.Now()
	change, err := s.allocate(ctx, req)
	fields := map[string]any{"change_type": string(req.Type)}
	if change != nil {
		fields["change_id"] = change.ID
	}
	observe(ctx, s.observer, "allocate", started, err, fields)
	return change, err
}

func (s *allocatorService) allocate(ctx context.Context, req contract.AllocateRequest) (*domain.Change, error) {
	if !domain.ValidChangeTypes[string(req.Type)] {
		return nil, fmt.Errorf("allocating change: unknown change type %q", req.Type)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("allocating change: title is required")
	}

	// Optimistic read-compute-commit: read the issued sequences, pick a
	// candidate, and let the registry's uniqueness constraint arbitrate.
	// A conflict means another allocation won the race; retry with the
	// next candidate under backoff rather than taking a lock.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond

	var change *domain.Change
	attempt := 0
	operation := func() error {
		attempt++
		if attempt > maxAllocationAttempts {
			return backoff.Permanent(fmt.Errorf("allocating %s change: %w after %d attempts",
				req.Type, domain.ErrAllocationConflict, maxAllocationAttempts))
		}
		c, err := s.tryAllocate(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrAllocationConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		change = c
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *allocatorService) tryAllocate(ctx context.Context, req contract.AllocateRequest) (*domain.Change, error) {
	var change *domain.Change
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		allocations := repository.NewSQLiteAllocationRepo(tx)
		changes := repository.NewSQLiteChangeRepo(tx)
		documents := repository.NewSQLiteDocumentRepo(tx)

		seqs, err := allocations.IssuedSeqs(ctx, req.Type)
		if err != nil {
			return err
		}
		seq := smallestUnused(seqs)
		id := s.format.FormatID(req.Type, seq)

		if err := allocations.Record(ctx, id, req.Type, seq); err != nil {
			return err
		}

		now := time.Now().UTC()
		c := &domain.Change{
			ID:              id,
			Type:            req.Type,
			Title:           req.Title,
			TargetMilestone: req.Milestone,
			Status:          domain.ChangePlanning,
			CreatedAt:       now,
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := changes.Create(ctx, c); err != nil {
			return err
		}

		doc := &domain.PlanDocument{
			ChangeID:     id,
			CurrentPhase: domain.PhaseSkeleton,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := documents.Create(ctx, doc); err != nil {
			return err
		}
		for i, spec := range s.template.Specs() {
			section := &domain.SectionContent{
				ChangeID:          id,
				Name:              spec.Name,
				IsPlaceholder:     true,
				LastModifiedPhase: domain.PhaseSkeleton,
				UpdatedAt:         now,
			}
			if err := documents.CreateSection(ctx, section, i); err != nil {
				return err
			}
		}

		change = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// smallestUnused returns the smallest positive integer absent from seqs.
// seqs is sorted ascending by the registry query.
func smallestUnused(seqs []int) int {
	next := 1
	for _, s := range seqs {
		if s == next {
			next++
		} else if s > next {
			break
		}
	}
	return next
}
