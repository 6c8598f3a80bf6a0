package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func typeText(a *ActionInput, s string) *ActionInput {
	a, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return a
}

func TestNewActionInput(t *testing.T) {
	in := NewActionInput(nil)

	assert.NotNil(t, in.styles)
	assert.False(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 80, in.Width())
}

func TestActionInput_OpenAppends(t *testing.T) {
	in := NewActionInput(nil)

	in.Open("Walk 10")
	in = typeText(in, " minutes")

	assert.True(t, in.Focused())
	assert.Equal(t, "Walk 10 minutes", in.Value())
}

func TestActionInput_Submit(t *testing.T) {
	in := NewActionInput(nil)
	in.Open("  Stretch  ")

	text, ok := in.Submit()
	assert.True(t, ok)
	assert.Equal(t, "Stretch", text)

	in.SetValue("   ")
	_, ok = in.Submit()
	assert.False(t, ok)
}

func TestActionInput_Close(t *testing.T) {
	in := NewActionInput(nil)
	in.Open("Stretch")

	in.Close()

	assert.False(t, in.Focused())
	assert.Empty(t, in.Value())
}

func TestActionInput_CharLimit(t *testing.T) {
	in := NewActionInput(nil)
	in.Open("")

	in = typeText(in, strings.Repeat("x", MaxActionLength+10))

	assert.Len(t, in.Value(), MaxActionLength)
}

func TestActionInput_SetWidth(t *testing.T) {
	in := NewActionInput(nil)

	in.SetWidth(30)
	assert.Equal(t, 30, in.Width())
	assert.Equal(t, 20, in.field.Width)

	in.SetWidth(100)
	assert.Equal(t, 100-len(prompt)-14, in.field.Width)
}

func TestActionInput_View(t *testing.T) {
	in := NewActionInput(nil)
	in.Open("Stretch")

	view := in.View()
	assert.Contains(t, view, "Modify action:")
	assert.Contains(t, view, "Stretch")
	assert.Contains(t, view, "7/280")
}

func TestActionInput_ViewWarnsWhenEmpty(t *testing.T) {
	in := NewActionInput(nil)
	assert.NotContains(t, in.View(), ErrEmptyAction.Error())

	in.Open("  ")
	assert.Contains(t, in.View(), ErrEmptyAction.Error())
}
