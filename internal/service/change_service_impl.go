package service

import (
	"context"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
)

type changeService struct {
	changes repository.ChangeRepo
}

// NewChangeService creates the registry read/maintenance service.
func NewChangeService(changes repository.ChangeRepo) ChangeService {
	return &changeService{changes: changes}
}

func (s *changeService) GetByID(ctx context.Context, id string) (*domain.Change, error) {
	return s.changes.GetByID(ctx, id)
}

func (s *changeService) List(ctx context.Context, includeClosed bool) ([]repository.RegistryRow, error) {
	return s.changes.List(ctx, includeClosed)
}

// Delete removes a change and its document. The allocation record stays,
// so the identifier is retired permanently.
func (s *changeService) Delete(ctx context.Context, id string) error {
	return s.changes.Delete(ctx, id)
}
