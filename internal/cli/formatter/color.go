package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/draftctl/draftctl/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PhaseIndicator returns a colored phase marker such as "● analysis".
func PhaseIndicator(p domain.Phase) string {
	switch p {
	case domain.PhaseRealized:
		return StyleGreen.Render("● " + string(p))
	case domain.PhaseVerification:
		return StylePurple.Render("● " + string(p))
	case domain.PhaseSkeleton:
		return StyleDim.Render("● " + string(p))
	default:
		return StyleBlue.Render("● " + string(p))
	}
}

// StatusPill renders a change status.
func StatusPill(s domain.ChangeStatus) string {
	switch s {
	case domain.ChangePlanning:
		return StyleYellow.Render(string(s))
	case domain.ChangeInProgress:
		return StyleBlue.Render(string(s))
	case domain.ChangeComplete:
		return StyleGreen.Render(string(s))
	default:
		return StyleDim.Render(string(s))
	}
}

// SyncBadge renders an external reference sync state.
func SyncBadge(s domain.SyncState) string {
	switch s {
	case domain.SyncPosted:
		return StyleGreen.Render(string(s))
	case domain.SyncStale:
		return StyleYellow.Render(string(s))
	default:
		return StyleDim.Render(string(s))
	}
}

// CheckMark renders a done/open checkbox.
func CheckMark(done bool) string {
	if done {
		return StyleGreen.Render("[x]")
	}
	return StyleDim.Render("[ ]")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
