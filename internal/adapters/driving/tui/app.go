package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/views/today"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/views/trends"
)

// App routes messages to the active screen. The today and trends
// screens always show the same date.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	menu   *menu.View
	today  *today.View
	trends *trends.View
	active messages.ViewType

	err error
	// Nothing renders before the first window size arrives.
	ready bool
}

var _ tea.Model = (*App)(nil)

// NewApp builds the screens on top of ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, ErrInvalidPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = s.Normal
	h.Styles.FullDesc = s.Muted
	h.Styles.FullSeparator = s.Muted

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		help:   h,
		menu:   menu.NewView(s),
		today:  today.NewView(s, ports.Flows, ports.State),
		trends: trends.NewView(s, ports.State),
		active: messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.today.WithContext(ctx)
	a.trends.WithContext(ctx)
	return a
}

// Open makes the program start on view at date. An empty date keeps today.
func (a *App) Open(view messages.ViewType, date string) *App {
	if date != "" {
		a.menu.SetDate(date)
		a.today.SetDate(date)
		a.trends.SetDate(date)
	}
	a.active = view
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("daylog"), a.load())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.active == messages.ViewHelp {
			if key.Matches(msg, a.keys.Nav.Back, a.keys.Help) {
				a.active = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.DateChanged:
		a.menu.SetDate(msg.Date)
		a.today.SetDate(msg.Date)
		a.trends.SetDate(msg.Date)
		if a.active == messages.ViewTrends {
			return a, a.trends.Load()
		}
		return a, a.today.Load()

	case messages.StateLoaded:
		a.err = msg.Err
		return a, a.toToday(msg)
	case messages.ActionResolved:
		a.err = msg.Err
		return a, a.toToday(msg)
	case messages.TrendsLoaded:
		a.err = msg.Err
		var cmd tea.Cmd
		a.trends, cmd = a.trends.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.active {
	case messages.ViewMenu:
		a.menu, cmd = a.menu.Update(msg)
	case messages.ViewToday:
		cmd = a.toToday(msg)
	case messages.ViewTrends:
		a.trends, cmd = a.trends.Update(msg)
	}
	return a, cmd
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.active = view
	return a.load()
}

func (a *App) load() tea.Cmd {
	switch a.active {
	case messages.ViewToday:
		return a.today.Init()
	case messages.ViewTrends:
		return a.trends.Init()
	}
	return nil
}

func (a *App) toToday(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.today, cmd = a.today.Update(msg)
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.active {
	case messages.ViewToday:
		return a.today.View()
	case messages.ViewTrends:
		return a.trends.View()
	case messages.ViewHelp:
		return a.keysView()
	}
	return a.menu.View()
}

func (a *App) keysView() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	b.WriteString(a.help.View(a.keys))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("esc back to menu"))
	return b.String()
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// CurrentView returns the active screen.
func (a *App) CurrentView() messages.ViewType {
	return a.active
}

// Date returns the date the today and trends screens show.
func (a *App) Date() string {
	return a.today.Date()
}

// Err returns the error of the last load or decision.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether a window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions passes the terminal size to every screen.
func (a *App) SetDimensions(width, height int) {
	a.ready = true
	a.help.Width = width
	a.menu.SetWidth(width)
	a.today.SetDimensions(width, height)
	a.trends.SetDimensions(width, height)
}
