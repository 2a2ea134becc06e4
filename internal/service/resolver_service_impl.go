package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
	"github.com/draftctl/draftctl/internal/tracker"
)

type resolverService struct {
	refs           repository.ExternalRefRepo
	documents      repository.DocumentRepo
	considerations repository.ConsiderationRepo
	client         tracker.Client
	observer       UseCaseObserver
}

// NewResolverService creates the external reference resolver. Posts and
// resyncs are at-least-once: a failed remote call leaves the reference
// stale so a retry is always safe, and the resolver itself never retries.
func NewResolverService(refs repository.ExternalRefRepo, documents repository.DocumentRepo, considerations repository.ConsiderationRepo, client tracker.Client, observers ...UseCaseObserver) ResolverService {
	return &resolverService{
		refs:           refs,
		documents:      documents,
		considerations: considerations,
		client:         client,
		observer:       useCaseObserverOrNoop(observers),
	}
}

// Post creates the remote comment for an anchor and records the mapping.
// Posting an anchor that already has a reference resyncs it instead, so
// the anchor-to-record mapping stays 1:1.
func (s *resolverService) Post(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error) {
	started := time.Now()
	ref, err := s.post(ctx, changeID, anchor)
	observe(ctx, s.observer, "resolver_post", started, err, map[string]any{
		"change_id": changeID, "anchor": anchor,
	})
	return ref, err
}

func (s *resolverService) post(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error) {
	if _, err := s.refs.Get(ctx, changeID, anchor); err == nil {
		return s.resync(ctx, changeID, anchor)
	} else if !errors.Is(err, domain.ErrReferenceNotFound) {
		return nil, err
	}

	body, err := s.renderAnchor(ctx, changeID, anchor)
	if err != nil {
		return nil, err
	}

	comment, err := s.client.CreateComment(ctx, changeID, body)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ref := &domain.ExternalReference{
		ChangeID:     changeID,
		LocalAnchor:  anchor,
		ExternalID:   comment.ExternalID,
		URL:          comment.URL,
		SyncState:    domain.SyncPosted,
		LastPostedAt: &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.refs.Create(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// Resync re-posts the anchor's current local content to its existing
// remote record. On remote failure the reference stays stale.
func (s *resolverService) Resync(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error) {
	started := time.Now()
	ref, err := s.resync(ctx, changeID, anchor)
	observe(ctx, s.observer, "resolver_resync", started, err, map[string]any{
		"change_id": changeID, "anchor": anchor,
	})
	return ref, err
}

func (s *resolverService) resync(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error) {
	ref, err := s.refs.Get(ctx, changeID, anchor)
	if err != nil {
		return nil, err
	}

	body, err := s.renderAnchor(ctx, changeID, anchor)
	if err != nil {
		return nil, err
	}

	// Skip the remote edit when the comment already carries the local
	// content; the state reset below still clears a stale mark.
	remote, err := s.client.FetchComment(ctx, ref.ExternalID)
	if err != nil {
		return nil, err
	}
	if remote != body {
		if err := s.client.UpdateComment(ctx, ref.ExternalID, body); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := s.refs.SetState(ctx, changeID, anchor, domain.SyncPosted, &now); err != nil {
		return nil, err
	}
	ref.SyncState = domain.SyncPosted
	ref.LastPostedAt = &now
	return ref, nil
}

func (s *resolverService) SyncStatus(ctx context.Context, changeID string) (*contract.SyncReport, error) {
	if _, err := s.documents.Get(ctx, changeID); err != nil {
		return nil, err
	}
	refs, err := s.refs.List(ctx, changeID)
	if err != nil {
		return nil, err
	}

	report := &contract.SyncReport{ChangeID: changeID}
	for _, ref := range refs {
		report.Refs = append(report.Refs, contract.SyncRefState{
			LocalAnchor: ref.LocalAnchor,
			ExternalID:  ref.ExternalID,
			URL:         ref.URL,
			SyncState:   ref.SyncState,
		})
	}
	return report, nil
}

// renderAnchor produces the comment body for an anchor: the section body
// for section anchors, or the question/answer pair for consideration
// anchors of the form "consideration/<seq>".
func (s *resolverService) renderAnchor(ctx context.Context, changeID, anchor string) (string, error) {
	if seqStr, ok := strings.CutPrefix(anchor, "consideration/"); ok {
		seq, err := strconv.Atoi(seqStr)
		if err != nil {
			return "", fmt.Errorf("anchor %s of change %s: malformed consideration anchor", anchor, changeID)
		}
		c, err := s.considerations.Get(ctx, changeID, seq)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "**Consideration %d** (%s)\n\n%s\n", c.Seq, c.Status, c.Question)
		if c.Answered() {
			fmt.Fprintf(&b, "\n**Answer:** %s\n", c.Answer)
		}
		return b.String(), nil
	}

	section, err := s.documents.GetSection(ctx, changeID, anchor)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("**%s** (%s)\n\n%s\n", section.Name, changeID, section.Body), nil
}
