// Package menu is the start screen of the TUI.
package menu

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Entry is one line of the menu. An entry without a target quits.
type Entry struct {
	Label  string
	Blurb  string
	Target messages.ViewType
}

// Entries are listed in this order and reachable by their 1-based index.
var Entries = []Entry{
	{Label: "Today", Blurb: "telemetry and micro-action of the day", Target: messages.ViewToday},
	{Label: "Trends", Blurb: "rolling averages ending on the day", Target: messages.ViewTrends},
	{Label: "Keys", Blurb: "every keybinding", Target: messages.ViewHelp},
	{Label: "Quit"},
}

// View lists the entries with a cursor.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	bar    *status.Bar
	cursor int
	date   string
}

// NewView creates the menu with the cursor on the first entry.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	v := &View{
		styles: s,
		keys:   km,
		bar:    status.NewBar(s, km.Hints(keymap.ScreenMenu)...),
	}
	v.SetDate(domain.Today())
	return v
}

// Update moves the cursor or opens an entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	switch {
	case key.Matches(km, v.keys.Nav.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(km, v.keys.Nav.Down):
		v.cursor = min(v.cursor+1, len(Entries)-1)
	case key.Matches(km, v.keys.Nav.Select):
		return v, open(Entries[v.cursor])
	case key.Matches(km, v.keys.Help):
		return v, open(Entry{Target: messages.ViewHelp})
	case key.Matches(km, v.keys.Quit):
		return v, tea.Quit
	default:
		if n, err := strconv.Atoi(km.String()); err == nil && n >= 1 && n <= len(Entries) {
			v.cursor = n - 1
			return v, open(Entries[v.cursor])
		}
	}
	return v, nil
}

func open(e Entry) tea.Cmd {
	if e.Target == "" {
		return tea.Quit
	}
	return messages.Change(e.Target)
}

// View renders the entries.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("daylog"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render(v.date))
	b.WriteString("\n\n")

	for i, e := range Entries {
		line := strconv.Itoa(i+1) + " " + e.Label
		if i == v.cursor {
			b.WriteString(v.styles.Selected.Render("▸ " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		if e.Blurb != "" {
			b.WriteString("  ")
			b.WriteString(v.styles.Muted.Render(e.Blurb))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.bar.View())
	return b.String()
}

// SetDate sets the day the other screens will open on.
func (v *View) SetDate(date string) {
	v.date = date
}

// SetWidth sets the width of the status bar.
func (v *View) SetWidth(width int) {
	v.bar.SetWidth(width)
}

// Cursor returns the index of the highlighted entry.
func (v *View) Cursor() int {
	return v.cursor
}
