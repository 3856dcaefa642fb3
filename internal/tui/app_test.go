package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/statebox/internal/config"
	"github.com/jask/statebox/internal/projection"
	"github.com/jask/statebox/internal/state"
	"github.com/jask/statebox/internal/state/search"
)

func newTestApp(t *testing.T) (*App, *state.Store) {
	t.Helper()
	st := state.NewStore()
	cfg := config.Default().UI
	order, err := projection.CompileOrder(cfg.OrderExpr)
	require.NoError(t, err)
	return New(context.Background(), cfg, st, order, nil), st
}

func typeText(a *App, text string) {
	for _, r := range text {
		if r == ' ' {
			a.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTypingDispatchesSetQuery(t *testing.T) {
	a, st := newTestApp(t)

	typeText(a, "fishing huts")
	require.Equal(t, "fishing huts", state.Query(st.State()))
	require.Equal(t, "fishing huts", a.input.Value())
	require.Equal(t, len("fishing huts"), a.updates)

	a.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	require.Equal(t, "fishing hut", state.Query(st.State()))
}

func TestFishingHutsThroughTheView(t *testing.T) {
	a, st := newTestApp(t)
	var orders []string
	orders = append(orders, a.props.order)
	st.Subscribe(func(state.State) { orders = append(orders, a.props.order) })

	st.Dispatch(search.SetQuery("fishing huts"))
	a.Update(tea.KeyMsg{Type: tea.KeyUp})
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	require.Equal(t, []string{" x0", "fishing huts x0", "fishing huts x1", " x1"}, orders)
	require.Equal(t, "", a.input.Value())
	require.Contains(t, a.View(), "Order:  x1")
	require.Contains(t, a.View(), "Counter: 1")
}

func TestStoreChangesAreReflectedInInput(t *testing.T) {
	a, st := newTestApp(t)
	st.Dispatch(search.SetQuery("boat hire"))
	require.Equal(t, "boat hire", a.input.Value())
	view := a.View()
	require.Contains(t, view, "Search query: boat hire")
	require.Contains(t, view, "Suggestions: boat hire")
}

func TestButtonsViaFocusAndEnter(t *testing.T) {
	a, st := newTestApp(t)
	typeText(a, "bait")

	a.Update(tea.KeyMsg{Type: tea.KeyTab}) // clear
	require.Equal(t, focusClear, a.focus)
	a.Update(tea.KeyMsg{Type: tea.KeyTab}) // increment
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, int64(2), state.Count(st.State()))

	a.Update(tea.KeyMsg{Type: tea.KeyTab}) // decrement
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, int64(1), state.Count(st.State()))

	// typed runes are ignored while a button has focus
	typeText(a, "x")
	require.Equal(t, "bait", state.Query(st.State()))

	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, focusClear, a.focus)
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "", state.Query(st.State()))

	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, focusInput, a.focus)
	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, focusDecrement, a.focus)
}

func TestArrowKeysChangeCounter(t *testing.T) {
	a, st := newTestApp(t)
	for i := 0; i < 3; i++ {
		a.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, int64(-3), state.Count(st.State()))
	require.Contains(t, a.View(), "Counter: -3")
}

func TestQuitUnsubscribes(t *testing.T) {
	a, st := newTestApp(t)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	before := a.updates
	st.Dispatch(search.SetQuery("after quit"))
	require.Equal(t, before, a.updates)
}

func TestContextCancelQuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := state.NewStore()
	a := New(ctx, config.Default().UI, st, nil, nil)

	cancel()
	msg := a.waitDone()()
	_, cmd := a.Update(msg)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUncancellableContextHasNoWaitCommand(t *testing.T) {
	a, _ := newTestApp(t)
	require.Nil(t, a.waitDone())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := New(ctx, config.Default().UI, state.NewStore(), nil, nil)
	require.NotNil(t, b.waitDone())
}

func TestNilOrderFallsBackToSelector(t *testing.T) {
	st := state.NewStore()
	a := New(context.Background(), config.Default().UI, st, nil, nil)
	st.Dispatch(search.SetQuery("huts"))
	require.Equal(t, "huts x0", a.props.order)
}

func TestOrderErrorIsRendered(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	a.props.orderErr = errors.New("bad projection")

	view := a.View()
	require.Contains(t, view, "Order: bad projection")
	require.Contains(t, view, strings.Repeat("─", 60))
}
