// Package tui is the terminal view over the store: it renders selected
// projections of the global state and turns key presses into actions.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/statebox/internal/config"
	"github.com/jask/statebox/internal/projection"
	"github.com/jask/statebox/internal/state"
	"github.com/jask/statebox/internal/state/counter"
	"github.com/jask/statebox/internal/state/search"
	"github.com/jask/statebox/internal/store"
)

// Store is what the view needs from the store.
type Store interface {
	State() state.State
	Dispatch(store.Action)
	Subscribe(func(state.State)) func()
}

type focus int

const (
	focusInput focus = iota
	focusClear
	focusIncrement
	focusDecrement
	focusCount
)

var buttonLabels = map[focus]string{
	focusClear:     "Clear search query",
	focusIncrement: "Increment",
	focusDecrement: "Decrement",
}

// props are the projections the view renders, refreshed on every store
// notification.
type props struct {
	query       string
	count       int64
	order       string
	orderErr    error
	suggestions []string
}

// App is the bubbletea model.
type App struct {
	ctx         context.Context
	store       Store
	cfg         config.UIConfig
	order       *projection.Order
	log         *zap.Logger
	input       textinput.Model
	keys        keyMap
	help        help.Model
	focus       focus
	props       props
	updates     int
	unsubscribe func()
	width       int
}

// New subscribes the view to st. order may be nil, in which case the fixed
// "<name> x<count>" projection is used.
func New(ctx context.Context, cfg config.UIConfig, st Store, order *projection.Order, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	in := textinput.New()
	in.Placeholder = cfg.Placeholder
	in.Prompt = "> "
	in.Focus()

	a := &App{
		ctx:   ctx,
		store: st,
		cfg:   cfg,
		order: order,
		log:   log,
		input: in,
		keys:  newKeyMap(),
		help:  help.New(),
	}
	a.sync(st.State())
	a.unsubscribe = st.Subscribe(a.onChange)
	return a
}

func (a *App) onChange(s state.State) {
	a.updates++
	a.sync(s)
}

// sync reselects props and keeps the text input controlled by the store.
func (a *App) sync(s state.State) {
	p := props{
		query: state.Query(s),
		count: state.Count(s),
	}
	if a.order != nil {
		p.order, p.orderErr = a.order.Eval(s)
		if p.orderErr != nil {
			a.log.Warn("order projection failed", zap.String("expr", a.order.String()), zap.Error(p.orderErr))
		}
	} else {
		p.order = state.OrderLine(s)
	}
	p.suggestions = projection.Suggest(p.query, a.cfg.Suggestions, a.cfg.SuggestDistance, a.cfg.SuggestLimit)
	a.props = p
	if a.input.Value() != p.query {
		a.input.SetValue(p.query)
	}
}

// Close detaches the view from the store.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

type doneMsg struct{}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.waitDone())
}

// waitDone ends the program when the app context is cancelled. A context
// that can never be cancelled gets no command.
func (a *App) waitDone() tea.Cmd {
	if a.ctx == nil {
		return nil
	}
	done := a.ctx.Done()
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
		a.input.Width = max(m.Width-4, 10)
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case doneMsg:
		a.Close()
		return a, tea.Quit
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.log.Debug("quit", zap.Int("updates", a.updates))
		a.Close()
		return a, tea.Quit
	case key.Matches(m, a.keys.Next):
		a.setFocus((a.focus + 1) % focusCount)
		return a, nil
	case key.Matches(m, a.keys.Prev):
		a.setFocus((a.focus + focusCount - 1) % focusCount)
		return a, nil
	case key.Matches(m, a.keys.Increment):
		a.store.Dispatch(counter.Increment())
		return a, nil
	case key.Matches(m, a.keys.Decrement):
		a.store.Dispatch(counter.Decrement())
		return a, nil
	case key.Matches(m, a.keys.Clear):
		a.store.Dispatch(search.ClearQuery())
		return a, nil
	case key.Matches(m, a.keys.Press) && a.focus != focusInput:
		a.press(a.focus)
		return a, nil
	}
	if a.focus != focusInput {
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	if v := a.input.Value(); v != a.props.query {
		a.store.Dispatch(search.SetQuery(v))
	}
	return a, cmd
}

func (a *App) press(f focus) {
	switch f {
	case focusClear:
		a.store.Dispatch(search.ClearQuery())
	case focusIncrement:
		a.store.Dispatch(counter.Increment())
	case focusDecrement:
		a.store.Dispatch(counter.Decrement())
	}
}

func (a *App) setFocus(f focus) {
	a.focus = f
	if f == focusInput {
		a.input.Focus()
	} else {
		a.input.Blur()
	}
}

// styles
var (
	titleStyle         = lipgloss.NewStyle().Bold(true)
	buttonStyle        = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	focusedButtonStyle = buttonStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("212"))
	ruleStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search query: "+a.props.query) + "\n")
	b.WriteString(a.input.View() + "\n")
	if len(a.props.suggestions) > 0 {
		b.WriteString(hintStyle.Render("Suggestions: "+strings.Join(a.props.suggestions, ", ")) + "\n")
	}
	b.WriteString(a.button(focusClear) + "\n")
	b.WriteString(a.rule() + "\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("Counter: %d", a.props.count)) + "\n")
	b.WriteString(a.button(focusIncrement) + "  " + a.button(focusDecrement) + "\n")
	b.WriteString(a.rule() + "\n")

	if a.props.orderErr != nil {
		b.WriteString(errorStyle.Render("Order: "+a.props.orderErr.Error()) + "\n")
	} else {
		b.WriteString(titleStyle.Render("Order: "+a.props.order) + "\n")
	}
	b.WriteString("\n" + a.help.View(a.keys))
	return b.String()
}

func (a *App) button(f focus) string {
	label := "[ " + buttonLabels[f] + " ]"
	if a.focus == f {
		return focusedButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func (a *App) rule() string {
	w := a.width
	if w <= 0 {
		w = 40
	}
	return ruleStyle.Render(strings.Repeat("─", w))
}
