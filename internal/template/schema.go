// Package template loads section templates: the ordered set of sections
// every new plan document starts with, and the phase that owns each one.
package template

import (
	"fmt"

	"github.com/draftctl/draftctl/internal/domain"
)

// Schema is the top-level YAML template structure.
type Schema struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Sections    []SectionConfig `yaml:"sections"`
}

// SectionConfig declares one section and its owning phase.
type SectionConfig struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
}

// Validate checks structural soundness: every section named once, every
// owner a known phase, and the terminal phase owning nothing.
func (s *Schema) Validate() error {
	if len(s.Sections) == 0 {
		return fmt.Errorf("template %q: at least one section is required", s.Name)
	}
	seen := make(map[string]bool, len(s.Sections))
	for i, sec := range s.Sections {
		if sec.Name == "" {
			return fmt.Errorf("template %q: section %d has no name", s.Name, i)
		}
		if seen[sec.Name] {
			return fmt.Errorf("template %q: duplicate section %q", s.Name, sec.Name)
		}
		seen[sec.Name] = true

		phase, ok := domain.ParsePhase(sec.Owner)
		if !ok {
			return fmt.Errorf("template %q: section %q: unknown owner phase %q", s.Name, sec.Name, sec.Owner)
		}
		if phase == domain.PhaseRealized {
			return fmt.Errorf("template %q: section %q: %s is terminal and owns no sections",
				s.Name, sec.Name, domain.PhaseRealized)
		}
	}
	return nil
}

// Compile converts a validated schema into the domain template.
func (s *Schema) Compile() (*domain.SectionTemplate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	specs := make([]domain.SectionSpec, 0, len(s.Sections))
	for i, sec := range s.Sections {
		phase, _ := domain.ParsePhase(sec.Owner)
		specs = append(specs, domain.SectionSpec{Name: sec.Name, Owner: phase, Order: i})
	}
	return domain.NewSectionTemplate(specs), nil
}
