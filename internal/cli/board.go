package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/draftctl/draftctl/internal/cli/formatter"
	"github.com/draftctl/draftctl/internal/contract"
	"github.com/draftctl/draftctl/internal/repository"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Interactive phase board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("board needs an interactive terminal; use 'draftctl change list' instead")
			}
			p := tea.NewProgram(newBoardModel(app, all), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed changes")

	return cmd
}

// ── messages ─────────────────────────────────────────────────────────────────

type boardLoadedMsg struct {
	rows []repository.RegistryRow
	err  error
}

type boardDetailMsg struct {
	changeID string
	report   *contract.PhaseReport
	err      error
}

// ── key bindings ─────────────────────────────────────────────────────────────

type boardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var boardKeys = boardKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ── model ────────────────────────────────────────────────────────────────────

// boardModel is a split-pane board: the change list on the left, the
// selected change's phase report on the right.
type boardModel struct {
	app        *App
	includeAll bool

	rows    []repository.RegistryRow
	cursor  int
	report  *contract.PhaseReport
	loading bool
	err     error

	width  int
	height int
}

func newBoardModel(app *App, includeAll bool) boardModel {
	return boardModel{app: app, includeAll: includeAll, loading: true}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadChanges()
}

func (m boardModel) loadChanges() tea.Cmd {
	return func() tea.Msg {
		rows, err := m.app.Changes.List(context.Background(), m.includeAll)
		return boardLoadedMsg{rows: rows, err: err}
	}
}

func (m boardModel) loadDetail() tea.Cmd {
	if m.cursor >= len(m.rows) {
		return nil
	}
	changeID := m.rows[m.cursor].Change.ID
	return func() tea.Msg {
		report, err := m.app.Gate.Status(context.Background(), changeID)
		return boardDetailMsg{changeID: changeID, report: report, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, m.loadDetail()

	case boardDetailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// A slow load for a row the cursor already left is dropped.
		if m.cursor < len(m.rows) && m.rows[m.cursor].Change.ID == msg.changeID {
			m.report = msg.report
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, boardKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, boardKeys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.report = nil
				return m, m.loadDetail()
			}
		case key.Matches(msg, boardKeys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.report = nil
				return m, m.loadDetail()
			}
		case key.Matches(msg, boardKeys.Refresh):
			m.loading = true
			return m, m.loadChanges()
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.loading {
		return formatter.Dim("Loading changes…")
	}
	if m.err != nil {
		return formatter.StyleRed.Render("Error: " + m.err.Error())
	}
	if len(m.rows) == 0 {
		return formatter.Dim("No changes. Create one with 'draftctl change new'.")
	}

	left := m.renderList()
	right := m.renderDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)

	help := formatter.Dim(fmt.Sprintf("%s  %s  %s  %s",
		boardKeys.Up.Help().Key+" "+boardKeys.Up.Help().Desc,
		boardKeys.Down.Help().Key+" "+boardKeys.Down.Help().Desc,
		boardKeys.Refresh.Help().Key+" "+boardKeys.Refresh.Help().Desc,
		boardKeys.Quit.Help().Key+" "+boardKeys.Quit.Help().Desc))

	return body + "\n\n" + help
}

func (m boardModel) renderList() string {
	var b strings.Builder
	b.WriteString(formatter.Header("changes") + "\n")
	for i, row := range m.rows {
		marker := "  "
		line := fmt.Sprintf("%s  %s", row.Change.ID, row.Change.Title)
		if i == m.cursor {
			marker = formatter.StyleHeader.Render("> ")
			line = formatter.Bold(line)
		} else {
			line = formatter.StyleFg.Render(line)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, line, formatter.PhaseIndicator(row.CurrentPhase))
	}
	return b.String()
}

func (m boardModel) renderDetail() string {
	if m.report == nil {
		return formatter.Dim("…")
	}
	return formatter.FormatPhaseReport(m.report)
}
