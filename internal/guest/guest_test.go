package guest

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocan/internal/dish"
	"cocan/internal/geometry"
	"cocan/internal/simclock"
)

type fixture struct {
	clock    *simclock.Clock
	sched    *simclock.Scheduler
	env      *Env
	arrivals []int
	finished int
	bubbles  []Bubble
}

func newFixture() *fixture {
	f := &fixture{clock: simclock.New(1)}
	f.sched = simclock.NewScheduler(f.clock)
	f.env = &Env{
		Clock:      f.clock,
		Scheduler:  f.sched,
		OrderTexts: []string{"sushi", "ramen", "pizza"},
		OnBubble:   func(g *Guest) { f.bubbles = append(f.bubbles, g.Bubble()) },
		OnCookingFinished: func(*Guest) {
			f.finished++
		},
	}
	return f
}

func (f *fixture) guest(id int) *Guest {
	return New(id, 0, dish.Preferences{}, geometry.V(0, 0, 0), 1, f.env, func(g *Guest) {
		f.arrivals = append(f.arrivals, g.ID())
	})
}

func (f *fixture) tick(g *Guest, dt time.Duration) {
	f.clock.Advance(dt)
	g.Update(dt)
	f.sched.Process()
}

func TestStatusTransitionsForwardOnly(t *testing.T) {
	f := newFixture()
	g := f.guest(0)

	require.NoError(t, g.Advance(WaitingOrder))
	require.NoError(t, g.Advance(Ordering))
	require.NoError(t, g.Advance(WaitingDish))
	require.NoError(t, g.Advance(GotDish))

	err := g.Advance(Ordering)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, GotDish, g.Status())
}

func TestEnteringMaySkipWaitingOrder(t *testing.T) {
	f := newFixture()
	g := f.guest(1)

	require.NoError(t, g.Advance(Ordering))
	assert.Equal(t, Ordering, g.Status())

	assert.Error(t, g.Advance(GotDish), "WaitingDish may not be skipped")
	assert.Error(t, New(2, 0, dish.Preferences{}, geometry.Zero, 1, f.env, nil).Advance(WaitingDish))
}

func TestOrderTextFromArrivalIndex(t *testing.T) {
	f := newFixture()
	assert.Equal(t, "sushi", f.guest(0).OrderText())
	assert.Equal(t, "ramen", f.guest(4).OrderText())

	f.env.OrderTexts = nil
	assert.Equal(t, DefaultOrderText, f.guest(7).OrderText())
}

func TestWaitingShowsOrder(t *testing.T) {
	f := newFixture()
	g := f.guest(2)

	require.NoError(t, g.Advance(WaitingOrder))
	assert.Equal(t, Bubble{Kind: BubbleOrder, Text: "pizza"}, g.Bubble())

	g.HideOrder()
	assert.False(t, g.Bubble().Visible())
}

func TestArrivalCallback(t *testing.T) {
	f := newFixture()
	g := f.guest(3)
	g.SetDestination(geometry.V(0, 0, 2))

	f.tick(g, time.Second)
	assert.Empty(t, f.arrivals)
	f.tick(g, time.Second)
	assert.Equal(t, []int{3}, f.arrivals)
	f.tick(g, time.Second)
	assert.Equal(t, []int{3}, f.arrivals)

	g.Leave()
	g.SetDestination(geometry.V(5, 0, 5))
	f.tick(g, 10*time.Second)
	assert.Equal(t, []int{3}, f.arrivals, "a guest that left never arrives again")
}

func TestCookTimer(t *testing.T) {
	f := newFixture()
	g := f.guest(0)

	assert.Equal(t, time.Duration(0), g.CookingTime())
	g.StartCooking()
	f.tick(g, 10*time.Second)
	assert.Equal(t, 10*time.Second, g.CookingTime())

	g.StopCooking()
	f.tick(g, 10*time.Second)
	assert.Equal(t, 10*time.Second, g.CookingTime(), "frozen after stop")
	assert.Equal(t, 1, f.finished)

	g.StopCooking()
	assert.Equal(t, 1, f.finished, "second stop must not signal again")
	assert.True(t, g.CookTimed())
}

func TestGotDishStopsTimers(t *testing.T) {
	f := newFixture()
	g := f.guest(0)
	require.NoError(t, g.Advance(Ordering))
	g.StartWaiting()
	f.tick(g, 3*time.Second)
	require.NoError(t, g.Advance(WaitingDish))
	g.StartCooking()
	f.tick(g, 4*time.Second)

	require.NoError(t, g.Advance(GotDish))
	f.tick(g, 5*time.Second)

	assert.False(t, g.IsCooking())
	assert.Equal(t, 4*time.Second, g.CookingTime())
	assert.Equal(t, 7*time.Second, g.WaitingTime())
	assert.Equal(t, 1, f.finished)
}

func TestReactionHidesAfterWindow(t *testing.T) {
	f := newFixture()
	g := f.guest(0)

	r := g.ShowReaction(30)
	assert.Equal(t, dish.Amazing, r)
	assert.Equal(t, Bubble{Kind: BubbleReaction, Text: "amazing"}, g.Bubble())

	g.HideOrder()
	assert.Equal(t, BubbleReaction, g.Bubble().Kind, "order refresh must not hide a reaction")

	f.tick(g, 1900*time.Millisecond)
	assert.True(t, g.Bubble().Visible())
	f.tick(g, 100*time.Millisecond)
	assert.False(t, g.Bubble().Visible())
}

func TestShowOrderCancelsReactionHide(t *testing.T) {
	f := newFixture()
	g := f.guest(1)

	g.ShowReaction(0)
	g.ShowOrder()
	f.tick(g, 3*time.Second)

	assert.Equal(t, Bubble{Kind: BubbleOrder, Text: "ramen"}, g.Bubble())
	assert.Equal(t, 0, f.sched.Len())
}

func TestStatusAndBubbleTextRoundTrip(t *testing.T) {
	for _, s := range []Status{Entering, WaitingOrder, Ordering, WaitingDish, GotDish} {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		var got Status
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, s, got)
	}

	for _, b := range []Bubble{{}, {Kind: BubbleOrder, Text: "soup"}, {Kind: BubbleReaction, Text: "great"}} {
		data, err := json.Marshal(b)
		require.NoError(t, err)
		var got Bubble
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, b, got)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("napping")))
	var k BubbleKind
	assert.Error(t, k.UnmarshalText([]byte("thought")))
}
