package template

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/draftctl/draftctl/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSchema []byte

// Default returns the built-in section template.
func Default() *domain.SectionTemplate {
	tmpl, err := parse(defaultSchema)
	if err != nil {
		// The embedded template is covered by tests; a parse failure
		// here is a build defect.
		panic(fmt.Sprintf("embedded default template: %v", err))
	}
	return tmpl
}

// LoadFile reads and compiles a section template from a YAML file. An
// empty path selects the built-in default.
func LoadFile(path string) (*domain.SectionTemplate, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	tmpl, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tmpl, nil
}

func parse(data []byte) (*domain.SectionTemplate, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return schema.Compile()
}
