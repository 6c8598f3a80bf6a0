// Package messages holds the tea.Msg values passed between the TUI views.
package messages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// ViewType names a screen.
type ViewType string

const (
	ViewMenu   ViewType = "menu"
	ViewToday  ViewType = "today"
	ViewTrends ViewType = "trends"
	ViewHelp   ViewType = "help"
)

// ViewChanged switches the active screen.
type ViewChanged struct {
	View ViewType
}

// DateChanged moves every screen to Date.
type DateChanged struct {
	Date string
}

// StateLoaded answers a load of the state of Date.
type StateLoaded struct {
	Date  string
	State *domain.DailyState
	Err   error
}

// TrendsLoaded answers a load of the windows ending at Date.
type TrendsLoaded struct {
	Date    string
	Windows []domain.TrendWindow
	Err     error
}

// ActionResolved answers a decision on the pending action.
type ActionResolved struct {
	Action *domain.PendingAction
	Err    error
}

// ErrorOccurred reports a failure outside a load or a decision.
type ErrorOccurred struct {
	Err error
}

// Quit ends the program.
type Quit struct{}

// Change returns a command switching to view.
func Change(view ViewType) tea.Cmd {
	return func() tea.Msg { return ViewChanged{View: view} }
}

// MoveTo returns a command moving every screen to date.
func MoveTo(date string) tea.Cmd {
	return func() tea.Msg { return DateChanged{Date: date} }
}
