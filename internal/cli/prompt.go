package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reqsmith/pkg/errors"
	"github.com/matzehuels/reqsmith/pkg/reconcile"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConflictModel - Interactive conflict resolution
// =============================================================================

// conflictChoice is one selectable resolution.
type conflictChoice struct {
	decision reconcile.Decision
	label    string
}

// conflictModel is the bubbletea model for resolving a version conflict.
type conflictModel struct {
	Conflict reconcile.Conflict
	Choices  []conflictChoice
	Cursor   int
	Chosen   bool
	Decision reconcile.Decision
	Aborted  bool
}

// newConflictModel creates a conflict resolution model.
func newConflictModel(c reconcile.Conflict) conflictModel {
	return conflictModel{
		Conflict: c,
		Choices: []conflictChoice{
			{reconcile.DecisionKeep, fmt.Sprintf("Keep %s (from %s)", c.Existing.String(), c.Existing.Source)},
			{reconcile.DecisionReplace, fmt.Sprintf("Use %s (from %s)", c.Incoming.String(), c.Incoming.Source)},
			{reconcile.DecisionUnconstrained, fmt.Sprintf("Add %s without a version constraint", c.Name)},
		},
	}
}

func (m conflictModel) Init() tea.Cmd {
	return nil
}

func (m conflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
			}
		case "enter":
			m.Chosen = true
			m.Decision = m.Choices[m.Cursor].decision
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m conflictModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("Version conflict: %s", m.Conflict.Name)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q abort"))
	b.WriteString("\n\n")

	for i, choice := range m.Choices {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(choice.label) + "\n")
	}

	return b.String()
}

// =============================================================================
// Resolver
// =============================================================================

// promptResolver settles conflicts by asking the user.
type promptResolver struct{}

// Resolve runs the interactive conflict prompt and returns the chosen
// decision. Aborting the prompt fails the run rather than guessing.
func (promptResolver) Resolve(ctx context.Context, c reconcile.Conflict) (reconcile.Decision, error) {
	p := tea.NewProgram(newConflictModel(c), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeConflictUnresolved, err, "conflict prompt failed for %q", c.Name)
	}
	m, ok := final.(conflictModel)
	if !ok || !m.Chosen {
		return 0, errors.New(errors.ErrCodeConflictUnresolved, "conflict for %q left unresolved", c.Name)
	}
	return m.Decision, nil
}

// =============================================================================
// ConfirmModel - Yes/no prompt
// =============================================================================

// confirmModel is the bubbletea model for a yes/no question.
type confirmModel struct {
	Question string
	Answer   bool
	Answered bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y", "enter":
			m.Answer = true
			m.Answered = true
			return m, tea.Quit
		case "n", "N", "q", "ctrl+c", "esc":
			m.Answer = false
			m.Answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	return styleTitle.Render(m.Question) + " " + listDimStyle.Render("[Y/n]") + "\n"
}

// confirmInit asks whether a missing pyproject.toml should be created.
// Any prompt failure counts as a decline.
func confirmInit(ctx context.Context) bool {
	model := confirmModel{Question: "No pyproject.toml found. Create one with poetry init?"}
	p := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false
	}
	m, ok := final.(confirmModel)
	return ok && m.Answered && m.Answer
}
