// Package input provides the question input of the interactive prompt.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/styles"
)

// MaxQuestionLength bounds the number of characters accepted.
const MaxQuestionLength = 500

// QuestionInput wraps a bubbles textinput with a labelled, bordered field.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewQuestionInput creates a focused question input.
func NewQuestionInput(s *styles.Styles, label string) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if label == "" {
		label = "Pregunta"
	}

	ti := textinput.New()
	ti.Placeholder = "¿Qué dice la normativa sobre...?"
	ti.Focus()
	ti.CharLimit = MaxQuestionLength
	ti.Width = 60

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     60,
	}
}

// Init starts the cursor blink.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label and the field.
func (q *QuestionInput) View() string {
	label := q.styles.Title.Render(q.label + ": ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focused returns whether the input is focused.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth fits the field to the terminal width.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	inputWidth := width - len(q.label) - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	q.textinput.Width = inputWidth
}

// Width returns the current width.
func (q *QuestionInput) Width() int {
	return q.width
}

// Reset clears the input.
func (q *QuestionInput) Reset() {
	q.textinput.Reset()
}
