package service

import (
	"context"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
)

type documentService struct {
	documents repository.DocumentRepo
	template  *domain.SectionTemplate
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

// NewDocumentService creates the section-addressed document store.
func NewDocumentService(documents repository.DocumentRepo, template *domain.SectionTemplate, uow db.UnitOfWork, observers ...UseCaseObserver) DocumentService {
	return &documentService{
		documents: documents,
		template:  template,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *documentService) Get(ctx context.Context, changeID string) (*domain.PlanDocument, error) {
	return s.documents.Get(ctx, changeID)
}

func (s *documentService) GetSection(ctx context.Context, changeID, name string) (*domain.SectionContent, error) {
	if !s.template.Contains(name) {
		return nil, fmt.Errorf("section %s of change %s: %w", name, changeID, domain.ErrUnknownSection)
	}
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	return s.documents.GetSection(ctx, changeID, name)
}

func (s *documentService) ListSections(ctx context.Context, changeID string) ([]*domain.SectionContent, error) {
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	return s.documents.ListSections(ctx, changeID)
}

// WriteSection replaces a section body on behalf of a phase. Only the
// owning phase may write, and archived documents refuse all writes. A
// posted external reference for the section is marked stale so the next
// resync picks the edit up.
func (s *documentService) WriteSection(ctx context.Context, changeID, name, body string, phase domain.Phase) error {
	started := time.Now()
	err := s.writeSection(ctx, changeID, name, body, phase)
	observe(ctx, s.observer, "write_section", started, err, map[string]any{
		"change_id": changeID, "section": name, "phase": string(phase),
	})
	return err
}

func (s *documentService) writeSection(ctx context.Context, changeID, name, body string, phase domain.Phase) error {
	owner, ok := s.template.Owner(name)
	if !ok {
		return fmt.Errorf("section %s of change %s: %w", name, changeID, domain.ErrUnknownSection)
	}
	if owner != phase {
		return fmt.Errorf("section %s of change %s is owned by %s, not %s: %w",
			name, changeID, owner, phase, domain.ErrNotSectionOwner)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txDocs := repository.NewSQLiteDocumentRepo(tx)
		txRefs := repository.NewSQLiteExternalRefRepo(tx)

		doc, err := txDocs.Get(ctx, changeID)
		if err != nil {
			return err
		}
		if doc.Archived() {
			return fmt.Errorf("section %s of change %s: %w", name, changeID, domain.ErrDocumentArchived)
		}
		section, err := txDocs.GetSection(ctx, changeID, name)
		if err != nil {
			return err
		}

		section.Body = body
		section.IsPlaceholder = false
		section.LastModifiedPhase = phase
		section.UpdatedAt = time.Now().UTC()
		if err := txDocs.UpdateSection(ctx, section); err != nil {
			return err
		}

		return txRefs.MarkStaleIfPosted(ctx, changeID, name)
	})
}
