// Package input wraps the bubbles text input used to rewrite a micro-action.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/styles"
)

// MaxActionLength bounds the text of a micro-action in runes.
const MaxActionLength = 280

// ErrEmptyAction is reported while the field holds only blanks.
var ErrEmptyAction = errors.New("action text is empty")

const prompt = "Modify action: "

// ActionInput edits the text of a pending action.
type ActionInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int
}

// NewActionInput creates a blurred, empty input.
func NewActionInput(s *styles.Styles) *ActionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	f := textinput.New()
	f.Prompt = ""
	f.Placeholder = "a small step you will take today"
	f.CharLimit = MaxActionLength
	f.PlaceholderStyle = s.Muted

	a := &ActionInput{field: f, styles: s}
	a.SetWidth(80)
	return a
}

// Open starts editing from text with the cursor at its end.
func (a *ActionInput) Open(text string) tea.Cmd {
	a.field.SetValue(text)
	a.field.CursorEnd()
	return a.field.Focus()
}

// Close stops editing and drops the text.
func (a *ActionInput) Close() {
	a.field.Blur()
	a.field.Reset()
}

// Submit returns the trimmed text, or false while it is empty.
func (a *ActionInput) Submit() (string, bool) {
	text := strings.TrimSpace(a.field.Value())
	return text, text != ""
}

// Update passes keys to the field.
func (a *ActionInput) Update(msg tea.Msg) (*ActionInput, tea.Cmd) {
	var cmd tea.Cmd
	a.field, cmd = a.field.Update(msg)
	return a, cmd
}

// View renders the prompt, the boxed field and a length counter.
func (a *ActionInput) View() string {
	count := fmt.Sprintf("%d/%d", utf8.RuneCountInString(a.field.Value()), MaxActionLength)
	counter := a.styles.Muted.Render(count)
	if _, ok := a.Submit(); !ok && a.field.Focused() {
		counter = a.styles.Warning.Render(ErrEmptyAction.Error())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		a.styles.Title.Render(prompt),
		a.styles.InputField.Render(a.field.View()),
		" ",
		counter,
	)
}

// Value returns the raw text.
func (a *ActionInput) Value() string { return a.field.Value() }

// SetValue replaces the text.
func (a *ActionInput) SetValue(text string) { a.field.SetValue(text) }

// Focused reports whether editing is in progress.
func (a *ActionInput) Focused() bool { return a.field.Focused() }

// SetWidth fits the field into width, leaving room for the prompt and counter.
func (a *ActionInput) SetWidth(width int) {
	a.width = width
	a.field.Width = max(width-lipgloss.Width(prompt)-14, 20)
}

// Width returns the width given to SetWidth.
func (a *ActionInput) Width() int { return a.width }
