package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var changeTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,19}$`)

// Change is the registry record for one unit of planned work. The ID is
// allocated once and never reused, even after deletion.
type Change struct {
	ID              string
	Type            ChangeType
	Title           string
	TargetMilestone string
	Status          ChangeStatus
	CreatedAt       time.Time
	ClosedAt        *time.Time
}

// IDFormat controls how allocated identifiers are rendered. The exact
// string format is configurable; {type}-{NNNN} is the default.
type IDFormat struct {
	Separator string
	SeqWidth  int
}

// DefaultIDFormat is the zero-padded four digit scheme, e.g. feature-0001.
var DefaultIDFormat = IDFormat{Separator: "-", SeqWidth: 4}

// FormatID renders a change identifier for the given type and sequence.
func (f IDFormat) FormatID(t ChangeType, seq int) string {
	return fmt.Sprintf("%s%s%0*d", t, f.Separator, f.SeqWidth, seq)
}

// ParseID splits a change identifier into its type and sequence number.
func (f IDFormat) ParseID(id string) (ChangeType, int, error) {
	idx := strings.LastIndex(id, f.Separator)
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, fmt.Errorf("change ID %q is not of the form {type}%s{seq}", id, f.Separator)
	}
	seq, err := strconv.Atoi(id[idx+1:])
	if err != nil || seq <= 0 {
		return "", 0, fmt.Errorf("change ID %q has a non-positive sequence component", id)
	}
	return ChangeType(id[:idx]), seq, nil
}

// ValidateType checks that the change type is in the accepted set.
func (c *Change) ValidateType() error {
	if !ValidChangeTypes[string(c.Type)] {
		return fmt.Errorf("unknown change type %q", c.Type)
	}
	return nil
}

// Validate checks registry invariants before a Change is persisted.
func (c *Change) Validate() error {
	if err := c.ValidateType(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("change %s: title is required", c.ID)
	}
	return nil
}
