// Package today provides the view of a day's state and pending action.
package today

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driving"
)

// ErrNoPendingAction is reported when a decision is made on a day without an action.
var ErrNoPendingAction = errors.New("no pending action")

// sourceOrder is the display order of raw sources.
var sourceOrder = []domain.SourceKind{
	domain.SourceVision,
	domain.SourceWearable,
	domain.SourceMobile,
	domain.SourceCheckin,
	domain.SourceJournal,
}

// View shows the daily state of one date.
type View struct {
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	flows  driving.FlowService
	state  driving.StateService

	date    string
	current *domain.DailyState
	input   *input.ActionInput
	editing bool
	bar     *status.Bar
	err     error

	width  int
	height int
}

// NewView creates a new today view for the current date.
func NewView(s *styles.Styles, flows driving.FlowService, state driving.StateService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	v := &View{
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		flows:  flows,
		state:  state,
		input:  input.NewActionInput(s),
		bar:    status.NewBar(s, km.Hints(keymap.ScreenToday)...),
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

// Init loads the state of the current date.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load fetches the state of the current date.
func (v *View) Load() tea.Cmd {
	if v.state == nil {
		return nil
	}
	v.bar.SetState(status.StateLoading)
	ctx, date, svc := v.ctx, v.date, v.state
	return func() tea.Msg {
		st, err := svc.Get(ctx, date)
		return messages.StateLoaded{Date: date, State: st, Err: err}
	}
}

// SetDate moves the view to date without loading it.
func (v *View) SetDate(date string) {
	if date != v.date {
		v.current = nil
	}
	v.date = date
	v.bar.SetDate(date)
}

// Update handles messages for the today view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.StateLoaded:
		if msg.Date != v.date {
			return v, nil
		}
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.current = msg.State
		v.bar.Clear()
		return v, nil

	case messages.ActionResolved:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.bar.Clear()
		if msg.Action == nil {
			return v, nil
		}
		if v.current != nil {
			v.current.PendingAction = msg.Action
		}
		v.bar.SetMessage(fmt.Sprintf("Action %s", msg.Action.Status))
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *View) updateEditing(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.stopEditing()
		return v, nil
	case tea.KeyEnter:
		text, ok := v.input.Submit()
		if !ok {
			return v, nil
		}
		v.stopEditing()
		return v, v.resolve(domain.DecisionModify, text)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) updateKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Nav.Back):
		return v, messages.Change(messages.ViewMenu)
	case key.Matches(msg, v.keymap.Action.Accept):
		return v, v.resolve(domain.DecisionAccept, "")
	case key.Matches(msg, v.keymap.Action.Skip):
		return v, v.resolve(domain.DecisionSkip, "")
	case key.Matches(msg, v.keymap.Action.Modify):
		pa := v.pendingAction()
		if pa == nil {
			v.setError(ErrNoPendingAction)
			return v, nil
		}
		v.editing = true
		return v, v.input.Open(pa.Text)
	case key.Matches(msg, v.keymap.Day.Prev):
		return v, v.shift(-1)
	case key.Matches(msg, v.keymap.Day.Next):
		return v, v.shift(1)
	case key.Matches(msg, v.keymap.Day.Today):
		return v, messages.MoveTo(domain.Today())
	case key.Matches(msg, v.keymap.Day.Refresh):
		return v, v.Load()
	}
	return v, nil
}

func (v *View) stopEditing() {
	v.editing = false
	v.input.Close()
}

func (v *View) shift(days int) tea.Cmd {
	date, err := domain.ShiftDate(v.date, days)
	if err != nil {
		v.setError(err)
		return nil
	}
	return messages.MoveTo(date)
}

func (v *View) resolve(decision domain.ActionDecision, text string) tea.Cmd {
	pa := v.pendingAction()
	if pa == nil {
		v.setError(ErrNoPendingAction)
		return nil
	}
	if v.flows == nil {
		return nil
	}
	v.bar.SetState(status.StateSaving)
	ctx, flows := v.ctx, v.flows
	in := domain.ActionInput{
		Date:     v.date,
		ActionID: pa.ID,
		Decision: decision,
		Text:     text,
	}
	return func() tea.Msg {
		action, err := flows.ResolveAction(ctx, in)
		return messages.ActionResolved{Action: action, Err: err}
	}
}

func (v *View) pendingAction() *domain.PendingAction {
	if v.current == nil {
		return nil
	}
	return v.current.PendingAction
}

func (v *View) setError(err error) {
	v.err = err
	v.bar.SetState(status.StateError)
	v.bar.SetMessage(err.Error())
}

// View renders the state of the day.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Day " + v.date))
	b.WriteString("\n\n")

	switch {
	case v.current == nil && v.err == nil:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case v.current == nil:
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	case v.current.IsNew():
		b.WriteString(v.styles.Muted.Render("Nothing ingested yet."))
		b.WriteString("\n")
		v.renderAction(&b)
	default:
		v.renderSources(&b)
		v.renderMetrics(&b)
		v.renderAction(&b)
	}

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.bar.View())
	return b.String()
}

func (v *View) renderSources(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Sources"))
	b.WriteString("\n")
	for _, kind := range sourceOrder {
		entry, ok := v.current.Raw[kind]
		if !ok {
			continue
		}
		b.WriteString(v.styles.Label.Render(string(kind)))
		b.WriteString(v.styles.Muted.Render(entry.IngestedAt.Format("15:04")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (v *View) renderMetrics(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Metrics"))
	b.WriteString("\n")
	n := v.current.Normalized
	for _, m := range domain.AllMetrics {
		val, ok := n.Value(m)
		if !ok {
			continue
		}
		b.WriteString(v.styles.Label.Render(string(m)))
		b.WriteString(v.styles.Normal.Render(strconv.FormatFloat(val, 'f', -1, 64)))
		b.WriteString("\n")
	}
	if n.SleepEfficiency != nil {
		b.WriteString(v.styles.Label.Render("sleep_efficiency"))
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("%.2f", *n.SleepEfficiency)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (v *View) renderAction(b *strings.Builder) {
	pa := v.current.PendingAction
	if pa == nil {
		b.WriteString(v.styles.Muted.Render("No micro-action proposed. Run 'daylog morning' first."))
		b.WriteString("\n")
		return
	}
	b.WriteString(v.styles.Subtitle.Render("Micro-action"))
	b.WriteString(" ")
	b.WriteString(v.styles.ActionStatus(pa.Status).Render("[" + string(pa.Status) + "]"))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(pa.Text))
	b.WriteString("\n")
	if pa.AlignedWith != "" {
		b.WriteString(v.styles.Muted.Render("aligned with " + pa.AlignedWith))
		b.WriteString("\n")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.bar.SetWidth(width)
	v.input.SetWidth(width)
}

// Date returns the displayed date.
func (v *View) Date() string {
	return v.date
}

// State returns the loaded state, nil until loaded.
func (v *View) State() *domain.DailyState {
	return v.current
}

// Editing reports whether the action text is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
