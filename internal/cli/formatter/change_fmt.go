package formatter

import (
	"fmt"
	"strings"

	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
)

// FormatChangeList renders the registry listing as a boxed table.
func FormatChangeList(rows []repository.RegistryRow) string {
	headers := []string{"ID", "TITLE", "TYPE", "STATUS", "PHASE", "MILESTONE"}
	out := make([][]string, 0, len(rows))

	for _, row := range rows {
		milestone := Dim("--")
		if row.Change.TargetMilestone != "" {
			milestone = StyleFg.Render(row.Change.TargetMilestone)
		}
		out = append(out, []string{
			Bold(row.Change.ID),
			StyleFg.Render(row.Change.Title),
			StylePurple.Render(string(row.Change.Type)),
			StatusPill(row.Change.Status),
			PhaseIndicator(row.CurrentPhase),
			milestone,
		})
	}

	return RenderBox("Changes", RenderTable(headers, out))
}

// FormatChangeShow renders one change with its document sections.
func FormatChangeShow(change *domain.Change, doc *domain.PlanDocument, sections []*domain.SectionContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(change.ID), StyleFg.Render(change.Title))
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		Dim("type:"), StylePurple.Render(string(change.Type)),
		Dim("status:"), StatusPill(change.Status),
		Dim("phase:"), PhaseIndicator(doc.CurrentPhase))
	if change.TargetMilestone != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("milestone:"), change.TargetMilestone)
	}
	if doc.Archived() {
		fmt.Fprintf(&b, "%s\n", StyleGreen.Render("archived"))
	}
	b.WriteString("\n")
	b.WriteString(FormatSectionList(sections))

	return RenderBox("", b.String())
}

// FormatSectionList renders the document's sections with fill state.
func FormatSectionList(sections []*domain.SectionContent) string {
	headers := []string{"SECTION", "STATE", "LAST PHASE"}
	rows := make([][]string, 0, len(sections))
	for _, s := range sections {
		state := StyleGreen.Render("filled")
		if s.IsPlaceholder {
			state = Dim("placeholder")
		}
		rows = append(rows, []string{
			StyleFg.Render(s.Name),
			state,
			Dim(string(s.LastModifiedPhase)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatSection renders one section body under its header.
func FormatSection(s *domain.SectionContent) string {
	body := s.Body
	if s.IsPlaceholder {
		body = Dim("(placeholder, not yet written)")
	}
	return fmt.Sprintf("%s\n\n%s", Header(s.Name), body)
}
