// Package status renders the one-line bar at the foot of each screen.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/styles"
)

// State is what the owning view is busy with.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateSaving  State = "saving"
	StateError   State = "error"
)

// Bar shows the view's state on the left and key hints on the right.
type Bar struct {
	styles *styles.Styles
	help   help.Model
	hints  []key.Binding

	state   State
	message string
	date    string
	width   int
}

// NewBar creates a ready bar showing hints.
func NewBar(s *styles.Styles, hints ...key.Binding) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = s.Normal
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles: s,
		help:   h,
		hints:  hints,
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar at its width. Hints are cut before the status is.
func (b *Bar) View() string {
	left := b.status()
	room := b.width - lipgloss.Width(left) - 4
	right := ""
	if room > 0 && len(b.hints) > 0 {
		b.help.Width = room
		right = b.help.ShortHelpView(b.hints)
	}

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	switch b.state {
	case StateLoading:
		return b.styles.Muted.Render("Loading...")
	case StateSaving:
		return b.styles.Muted.Render("Saving...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	}
	switch {
	case b.message != "":
		return b.styles.Success.Render(b.message)
	case b.date != "":
		return b.styles.Normal.Render(b.date)
	}
	return b.styles.Muted.Render("Ready")
}

// SetState sets what the view is busy with.
func (b *Bar) SetState(state State) { b.state = state }

// State returns the current state.
func (b *Bar) State() State { return b.state }

// SetMessage sets the text shown next to the state.
func (b *Bar) SetMessage(message string) { b.message = message }

// Message returns the current message.
func (b *Bar) Message() string { return b.message }

// SetDate sets the date shown while idle.
func (b *Bar) SetDate(date string) { b.date = date }

// Date returns the date shown while idle.
func (b *Bar) Date() string { return b.date }

// SetHints replaces the key hints.
func (b *Bar) SetHints(hints ...key.Binding) { b.hints = hints }

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) { b.width = width }

// Width returns the bar width.
func (b *Bar) Width() int { return b.width }

// Clear returns to the ready state. The date is kept.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
