// Package styles holds the palette and lipgloss styles of the daylog TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Palette names colours by what they mean on screen rather than by hue.
type Palette struct {
	Accent  lipgloss.Color // titles, the selected menu entry
	Calm    lipgloss.Color // metric labels, section headers
	Text    lipgloss.Color
	Dim     lipgloss.Color // counts, hints, skipped actions
	Good    lipgloss.Color // improving trends, accepted actions
	Caution lipgloss.Color // pending actions
	Bad     lipgloss.Color // worsening trends, errors
	Rule    lipgloss.Color // borders
	Bar     lipgloss.Color // status bar background
}

// Evening is the default palette: warm accents on a dark slate.
func Evening() Palette {
	return Palette{
		Accent:  "#F5A97F",
		Calm:    "#8BD5CA",
		Text:    "#CAD3F5",
		Dim:     "#6E738D",
		Good:    "#A6DA95",
		Caution: "#EED49F",
		Bad:     "#ED8796",
		Rule:    "#494D64",
		Bar:     "#1E2030",
	}
}

// Styles are built once from a palette and shared by every view.
type Styles struct {
	palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	// Label pads metric names into a column.
	Label lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// LabelWidth fits the longest metric name, night_screen_minutes.
const LabelWidth = 22

// NewStyles builds the styles for p.
func NewStyles(p Palette) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		palette:  p,
		Title:    fg(p.Accent).Bold(true),
		Subtitle: fg(p.Calm).Bold(true),
		Normal:   fg(p.Text),
		Muted:    fg(p.Dim),
		Selected: fg(p.Accent).Bold(true),
		Label:    fg(p.Calm).Width(LabelWidth),
		Error:    fg(p.Bad),
		Success:  fg(p.Good),
		Warning:  fg(p.Caution),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Rule).
			Padding(0, 1),
		StatusBar: fg(p.Dim).Background(p.Bar).Padding(0, 1),
		Help:      fg(p.Dim),
	}
}

// DefaultStyles uses the Evening palette.
func DefaultStyles() *Styles {
	return NewStyles(Evening())
}

// Palette returns the colours the styles were built from.
func (s *Styles) Palette() Palette {
	return s.palette
}

// ActionStatus colours a micro-action by its state.
func (s *Styles) ActionStatus(status domain.ActionStatus) lipgloss.Style {
	switch status {
	case domain.ActionAccepted, domain.ActionModified:
		return s.Success
	case domain.ActionSkipped:
		return s.Muted
	default:
		return s.Warning
	}
}

// Trend colours the movement of m: green when it improved, red when it
// got worse. A rising resting heart rate is a worsening.
func (s *Styles) Trend(m domain.Metric, d domain.Direction) lipgloss.Style {
	if d == domain.DirectionFlat || d == "" {
		return s.Muted
	}
	if (d == domain.DirectionUp) != m.LowerIsBetter() {
		return s.Success
	}
	return s.Error
}
