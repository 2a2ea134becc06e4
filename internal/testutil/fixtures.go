package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/google/uuid"
)

var testSeqCounter atomic.Int64

// Change options
type ChangeOption func(*domain.Change)

func WithChangeType(t domain.ChangeType) ChangeOption {
	return func(c *domain.Change) {
		c.Type = t
		typ, seq, err := domain.DefaultIDFormat.ParseID(c.ID)
		if err == nil && typ != t {
			c.ID = domain.DefaultIDFormat.FormatID(t, seq)
		}
	}
}

func WithChangeStatus(s domain.ChangeStatus) ChangeOption {
	return func(c *domain.Change) {
		c.Status = s
	}
}

func WithMilestone(m string) ChangeOption {
	return func(c *domain.Change) {
		c.TargetMilestone = m
	}
}

// NewTestChange builds a feature change with a unique sequential ID.
func NewTestChange(title string, opts ...ChangeOption) *domain.Change {
	seq := int(testSeqCounter.Add(1))
	now := time.Now().UTC()
	c := &domain.Change{
		ID:        domain.DefaultIDFormat.FormatID(domain.ChangeFeature, seq),
		Type:      domain.ChangeFeature,
		Title:     title,
		Status:    domain.ChangePlanning,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTestDocument builds a skeleton-phase document for the given change.
func NewTestDocument(changeID string) *domain.PlanDocument {
	now := time.Now().UTC()
	return &domain.PlanDocument{
		ChangeID:     changeID,
		CurrentPhase: domain.PhaseSkeleton,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestSection builds a placeholder section for the given change.
func NewTestSection(changeID, name string, owner domain.Phase) *domain.SectionContent {
	return &domain.SectionContent{
		ChangeID:          changeID,
		Name:              name,
		IsPlaceholder:     true,
		LastModifiedPhase: domain.PhaseSkeleton,
		UpdatedAt:         time.Now().UTC(),
	}
}

// NewTestChecklistItem builds an open checklist item.
func NewTestChecklistItem(changeID string, phase domain.Phase, description string) *domain.ChecklistItem {
	now := time.Now().UTC()
	return &domain.ChecklistItem{
		ID:          uuid.New().String(),
		ChangeID:    changeID,
		Phase:       phase,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestConsideration builds a pending consideration with the given seq.
func NewTestConsideration(changeID string, seq int, question string) *domain.Consideration {
	now := time.Now().UTC()
	return &domain.Consideration{
		ChangeID:  changeID,
		Seq:       seq,
		Question:  question,
		Status:    domain.ConsiderationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UniqueTitle returns a title that is unique within the test run.
func UniqueTitle(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, testSeqCounter.Add(1))
}
