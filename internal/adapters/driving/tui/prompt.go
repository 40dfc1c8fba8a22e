// Package tui provides the interactive question prompt used by `ask` when
// no question is given on the command line.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/styles"
)

// ErrCancelled is returned when the user leaves the prompt without asking.
var ErrCancelled = errors.New("tui: prompt cancelled")

// PromptModel reads one question. It implements tea.Model.
type PromptModel struct {
	input     *input.QuestionInput
	keys      *keymap.KeyMap
	styles    *styles.Styles
	header    string
	question  string
	cancelled bool
	hint      string
}

// NewPromptModel creates a prompt. header is shown above the input.
func NewPromptModel(header string) *PromptModel {
	s := styles.DefaultStyles()
	return &PromptModel{
		input:  input.NewQuestionInput(s, ""),
		keys:   keymap.DefaultKeyMap(),
		styles: s,
		header: header,
	}
}

// Init starts the cursor blink.
func (m *PromptModel) Init() tea.Cmd {
	return m.input.Init()
}

// Update handles key presses and window resizes.
func (m *PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.hint = "Escribe una pregunta."
				return m, nil
			}
			m.question = q
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.input.Reset()
			m.hint = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the header, the input and the key hints.
func (m *PromptModel) View() string {
	if m.question != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	if m.header != "" {
		b.WriteString(m.styles.Title.Render(m.header))
		b.WriteString("\n\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.hint != "" {
		b.WriteString(m.styles.Warning.Render(m.hint))
		b.WriteString("\n")
	}

	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	b.WriteString(m.styles.Help.Render(strings.Join(hints, " • ")))
	b.WriteString("\n")
	return b.String()
}

// Question returns the submitted question, or "" if none was submitted.
func (m *PromptModel) Question() string {
	return m.question
}

// Cancelled reports whether the user left without asking.
func (m *PromptModel) Cancelled() bool {
	return m.cancelled
}

// ReadQuestion runs the prompt on the given terminal streams.
// Returns ErrCancelled if the user leaves without asking.
func ReadQuestion(ctx context.Context, in io.Reader, out io.Writer, header string) (string, error) {
	model := NewPromptModel(header)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("question prompt: %w", err)
	}

	m, ok := final.(*PromptModel)
	if !ok || m.Cancelled() || m.Question() == "" {
		return "", ErrCancelled
	}
	return m.Question(), nil
}
