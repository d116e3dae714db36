package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmKeys are the answers a confirmation prompt accepts.
type confirmKeys struct {
	Yes key.Binding
	No  key.Binding
}

func defaultConfirmKeys() confirmKeys {
	return confirmKeys{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "enter", "esc", "ctrl+c", "q"),
			key.WithHelp("N", "no"),
		),
	}
}

// confirmModel is a one-key yes/no prompt. Keys outside both bindings are
// ignored.
type confirmModel struct {
	question string
	keys     confirmKeys
	st       styles
	answer   bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Yes):
		m.answer, m.done = true, true
	case key.Matches(km, m.keys.No):
		m.answer, m.done = false, true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		answer := m.st.muted.Render("no")
		if m.answer {
			answer = m.st.danger.Render("yes")
		}
		return fmt.Sprintf("%s %s\n", m.question, answer)
	}
	hint := fmt.Sprintf("[%s/%s]", m.keys.Yes.Help().Key, m.keys.No.Help().Key)
	return fmt.Sprintf("%s %s ", m.st.warn.Render(m.question), m.st.muted.Render(hint))
}

// Confirm asks question on out and reads a single y/n key from in. It
// returns false on any answer other than y, and on cancellation.
func Confirm(ctx context.Context, in io.Reader, out io.Writer, question string) (bool, error) {
	m := confirmModel{question: question, keys: defaultConfirmKeys(), st: newStyles(lipgloss.NewRenderer(out))}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	)
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	fm, ok := final.(confirmModel)
	return ok && fm.answer, nil
}
