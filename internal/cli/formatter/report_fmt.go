package formatter

import (
	"fmt"
	"strings"

	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/domain"
)

// FormatPhaseReport renders the standard completion report of a phase
// command.
func FormatPhaseReport(r *contract.PhaseReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s", Bold(r.ChangeID), PhaseIndicator(r.CurrentPhase))
	if r.Advanced {
		fmt.Fprintf(&b, "  %s", StyleGreen.Render("advanced"))
	}
	b.WriteString("\n")

	if len(r.IncompleteItems) > 0 {
		b.WriteString("\n" + Header("open items") + "\n")
		for _, item := range r.IncompleteItems {
			fmt.Fprintf(&b, "%s %s %s\n", CheckMark(false), StyleFg.Render(item.Description), Dim(item.ID))
		}
	}
	if len(r.PendingConsiderations) > 0 {
		b.WriteString("\n" + Header("pending considerations") + "\n")
		for _, c := range r.PendingConsiderations {
			marker := StyleYellow.Render("?")
			if c.Answered {
				marker = StyleBlue.Render("a")
			}
			fmt.Fprintf(&b, "%s #%d %s\n", marker, c.Seq, StyleFg.Render(c.Question))
		}
	}
	if !r.Blocked() {
		b.WriteString(Dim("\nnothing blocks the next gate\n"))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatGateViolation renders a refused transition with every unmet
// condition.
func FormatGateViolation(v *domain.GateViolationError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s → %s\n", StyleRed.Render("gate refused:"),
		PhaseIndicator(v.From), PhaseIndicator(v.To))
	for _, cond := range v.Conditions {
		fmt.Fprintf(&b, "  %s %s\n", StyleRed.Render("✗"), StyleFg.Render(cond))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatChecklist renders checklist items as an indented tree.
func FormatChecklist(items []*domain.ChecklistItem) string {
	byParent := make(map[string][]*domain.ChecklistItem)
	var roots []*domain.ChecklistItem
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		byParent[*item.ParentID] = append(byParent[*item.ParentID], item)
	}

	var b strings.Builder
	var walk func(item *domain.ChecklistItem, depth int)
	walk = func(item *domain.ChecklistItem, depth int) {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s%s %s %s\n", indent, CheckMark(item.Done),
			StyleFg.Render(item.Description), Dim(item.ID))
		for _, child := range byParent[item.ID] {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatConsiderations renders the consideration list.
func FormatConsiderations(considerations []*domain.Consideration) string {
	headers := []string{"#", "STATUS", "QUESTION", "ANSWER"}
	rows := make([][]string, 0, len(considerations))
	for _, c := range considerations {
		status := StyleYellow.Render(string(c.Status))
		if c.Status == domain.ConsiderationResolved {
			status = StyleGreen.Render(string(c.Status))
		}
		answer := Dim("--")
		if c.Answered() {
			answer = StyleFg.Render(c.Answer)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Seq),
			status,
			StyleFg.Render(c.Question),
			answer,
		})
	}
	return RenderTable(headers, rows)
}

// FormatConsiderationHistory renders the event log of one consideration.
func FormatConsiderationHistory(events []*domain.ConsiderationEvent) string {
	var b strings.Builder
	for _, e := range events {
		detail := ""
		if e.Detail != "" {
			detail = "  " + StyleFg.Render(e.Detail)
		}
		fmt.Fprintf(&b, "%s %s%s\n",
			Dim(e.At.Format("2006-01-02 15:04")),
			StylePurple.Render(string(e.Kind)), detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSyncReport renders external reference sync states.
func FormatSyncReport(r *contract.SyncReport) string {
	headers := []string{"ANCHOR", "STATE", "EXTERNAL", "URL"}
	rows := make([][]string, 0, len(r.Refs))
	for _, ref := range r.Refs {
		rows = append(rows, []string{
			StyleFg.Render(ref.LocalAnchor),
			SyncBadge(ref.SyncState),
			Dim(ref.ExternalID),
			StyleBlue.Render(ref.URL),
		})
	}
	return RenderBox("Sync "+r.ChangeID, RenderTable(headers, rows))
}
