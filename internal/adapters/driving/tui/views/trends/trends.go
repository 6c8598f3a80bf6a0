// Package trends provides the rolling trend view for the TUI.
package trends

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
)

// View shows the trend windows ending at a date.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	state  driving.StateService

	date    string
	windows []domain.TrendWindow
	loaded  bool
	bar     *status.Bar
	err     error

	width  int
	height int
}

// NewView creates a new trends view ending at the current date.
func NewView(s *styles.Styles, state driving.StateService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	v := &View{
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		state:  state,
		bar:    status.NewBar(s, km.Hints(keymap.ScreenTrends)...),
		width:  80,
		height: 24,
	}
	v.SetDate(domain.Today())
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the windows ending at the current date.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load computes the windows ending at the current date.
func (v *View) Load() tea.Cmd {
	if v.state == nil {
		return nil
	}
	v.bar.SetState(status.StateLoading)
	ctx, date, svc := v.ctx, v.date, v.state
	return func() tea.Msg {
		windows, err := svc.Trends(ctx, date)
		return messages.TrendsLoaded{Date: date, Windows: windows, Err: err}
	}
}

// SetDate moves the view to date without loading it.
func (v *View) SetDate(date string) {
	if date != v.date {
		v.windows = nil
		v.loaded = false
	}
	v.date = date
	v.bar.SetDate(date)
}

// Update handles messages for the trends view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.TrendsLoaded:
		if msg.Date != v.date {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			v.bar.SetState(status.StateError)
			v.bar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.windows = msg.Windows
		v.loaded = true
		v.bar.Clear()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Nav.Back):
			return v, messages.Change(messages.ViewMenu)
		case key.Matches(msg, v.keymap.Day.Prev):
			return v, v.shift(-1)
		case key.Matches(msg, v.keymap.Day.Next):
			return v, v.shift(1)
		case key.Matches(msg, v.keymap.Day.Today):
			return v, messages.MoveTo(domain.Today())
		case key.Matches(msg, v.keymap.Day.Refresh):
			return v, v.Load()
		}
	}

	return v, nil
}

func (v *View) shift(days int) tea.Cmd {
	date, err := domain.ShiftDate(v.date, days)
	if err != nil {
		v.err = err
		return nil
	}
	return messages.MoveTo(date)
}

// View renders the trend windows.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Trends to " + v.date))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	case !v.loaded:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(v.windows) == 0:
		b.WriteString(v.styles.Muted.Render("No trend windows configured."))
		b.WriteString("\n")
	}

	for _, w := range v.windows {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%d days", w.Days)))
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %d records", w.Records)))
		b.WriteString("\n")
		if len(w.Fields) == 0 {
			b.WriteString(v.styles.Muted.Render("  no data"))
			b.WriteString("\n")
		}
		for _, m := range domain.AllMetrics {
			f, ok := w.Field(m)
			if !ok {
				continue
			}
			b.WriteString(v.styles.Label.Render(string(m)))
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%8s", strconv.FormatFloat(f.Avg, 'f', 1, 64))))
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  n=%d", f.Count)))
			if f.Delta != nil {
				b.WriteString(v.styles.Trend(m, f.Direction).Render(fmt.Sprintf("  %+.1f %s", *f.Delta, f.Direction)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(v.bar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.bar.SetWidth(width)
}

// Date returns the end date of the displayed windows.
func (v *View) Date() string {
	return v.date
}

// Windows returns the loaded windows.
func (v *View) Windows() []domain.TrendWindow {
	return v.windows
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
