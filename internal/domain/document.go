package domain

import "time"

// PlanDocument is the evolving planning record for one Change. There is
// exactly one document per change; it is archived, never deleted.
type PlanDocument struct {
	ChangeID     string
	CurrentPhase Phase
	ArchivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Archived reports whether the document has been archived.
func (d *PlanDocument) Archived() bool {
	return d.ArchivedAt != nil
}

// SectionContent is one named block of a PlanDocument. Sections exist as
// placeholders from skeleton creation onward; IsPlaceholder flips false
// on the first real write and stays false.
type SectionContent struct {
	ChangeID          string
	Name              string
	Body              string
	IsPlaceholder     bool
	LastModifiedPhase Phase
	UpdatedAt         time.Time
}

// SectionSpec describes one section of the document template: its name,
// the phase that owns writes to it, and its display order.
type SectionSpec struct {
	Name  string
	Owner Phase
	Order int
}

// SectionTemplate is the ordered set of sections every document is
// initialized with, plus the phase ownership map the write gate enforces.
type SectionTemplate struct {
	specs  []SectionSpec
	byName map[string]SectionSpec
}

// NewSectionTemplate builds a template from ordered section specs.
func NewSectionTemplate(specs []SectionSpec) *SectionTemplate {
	t := &SectionTemplate{specs: specs, byName: make(map[string]SectionSpec, len(specs))}
	for _, s := range specs {
		t.byName[s.Name] = s
	}
	return t
}

// DefaultSectionTemplate returns the built-in section skeleton.
func DefaultSectionTemplate() *SectionTemplate {
	return NewSectionTemplate([]SectionSpec{
		{Name: "scaffolding", Owner: PhaseSkeleton, Order: 0},
		{Name: "identifiers", Owner: PhaseSkeleton, Order: 1},
		{Name: "overview", Owner: PhaseAnalysis, Order: 2},
		{Name: "considerations", Owner: PhaseAnalysis, Order: 3},
		{Name: "outline", Owner: PhaseAnalysis, Order: 4},
		{Name: "test_scenarios", Owner: PhaseTestSpec, Order: 5},
		{Name: "implementation", Owner: PhaseImplSpec, Order: 6},
		{Name: "work_breakdown", Owner: PhaseImplSpec, Order: 7},
		{Name: "documentation", Owner: PhaseDocSpec, Order: 8},
		{Name: "success_criteria", Owner: PhaseDocSpec, Order: 9},
		{Name: "release_notes", Owner: PhaseChangelog, Order: 10},
		{Name: "verification_report", Owner: PhaseVerification, Order: 11},
	})
}

// Names returns section names in template order.
func (t *SectionTemplate) Names() []string {
	names := make([]string, len(t.specs))
	for i, s := range t.specs {
		names[i] = s.Name
	}
	return names
}

// Specs returns the ordered section specs.
func (t *SectionTemplate) Specs() []SectionSpec {
	out := make([]SectionSpec, len(t.specs))
	copy(out, t.specs)
	return out
}

// Contains reports whether name is part of the template.
func (t *SectionTemplate) Contains(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Owner returns the phase that owns writes to the named section.
func (t *SectionTemplate) Owner(name string) (Phase, bool) {
	s, ok := t.byName[name]
	if !ok {
		return "", false
	}
	return s.Owner, true
}

// OwnedBy returns the names of all sections owned by the given phase,
// in template order.
func (t *SectionTemplate) OwnedBy(phase Phase) []string {
	var names []string
	for _, s := range t.specs {
		if s.Owner == phase {
			names = append(names, s.Name)
		}
	}
	return names
}
