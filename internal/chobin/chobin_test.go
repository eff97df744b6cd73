package chobin

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocan/internal/geometry"
)

const dt = 100 * time.Millisecond

type hookLog struct {
	serves   int
	returns  int
	statuses []Status
}

func testConfig() Config {
	return Config{
		WaitingSpots:   []geometry.Vec3{geometry.V(0, 0, 0), geometry.V(-1, 0, 0)},
		ServingSpot:    geometry.V(0, 0, 2),
		Speed:          10,
		PerformingTime: time.Second,
		CommandCount:   2,
		Materials:      3,
		Actions:        2,
	}
}

func stations() []Target {
	return []Target{
		{Position: geometry.V(1, 0, 0), Facing: geometry.V(0, 0, 1)},
		{Position: geometry.V(2, 0, 0)},
	}
}

func newLogged() (*Chobin, *hookLog) {
	p := &hookLog{}
	c := New(0, geometry.Zero, testConfig(), nil, Hooks{
		OnServe:  func(*Chobin) { p.serves++ },
		OnReturn: func(*Chobin) { p.returns++ },
		OnStatus: func(c *Chobin, _ Status) { p.statuses = append(p.statuses, c.Status()) },
	})
	return c, p
}

func runUntilIdle(t *testing.T, c *Chobin) int {
	t.Helper()
	for i := 1; i <= 1000; i++ {
		c.Update(dt)
		if c.Status() == Idle {
			return i
		}
	}
	t.Fatalf("chobin never came back, stuck in %s", c.Status())
	return 0
}

func TestDispatchRunsFullCycle(t *testing.T) {
	c, p := newLogged()
	require.NoError(t, c.Dispatch(stations()))
	assert.True(t, c.IsCooking())

	runUntilIdle(t, c)

	assert.Equal(t, []Status{
		Moving, Performing, Moving, Performing, ServingDish, Returning, Idle,
	}, p.statuses)
	assert.Equal(t, 1, p.serves)
	assert.Equal(t, 1, p.returns)
	assert.False(t, c.IsCooking())
}

func TestDispatchOnlyWhenIdle(t *testing.T) {
	c, _ := newLogged()
	require.NoError(t, c.Dispatch(stations()))
	assert.ErrorIs(t, c.Dispatch(stations()), ErrNotIdle)

	other := New(1, geometry.Zero, testConfig(), nil, Hooks{})
	assert.ErrorIs(t, other.Dispatch(stations()[:1]), ErrTargetCount)
	assert.Equal(t, Idle, other.Status())
}

func TestServeFiresOncePerDispatch(t *testing.T) {
	c, p := newLogged()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Dispatch(stations()))
		runUntilIdle(t, c)
		assert.Equal(t, i+1, p.serves)
		assert.Equal(t, i+1, p.returns)
	}
}

func TestPerformingTakesConfiguredTime(t *testing.T) {
	c, _ := newLogged()
	require.NoError(t, c.Dispatch(stations()))
	c.Update(dt)
	require.Equal(t, Performing, c.Status())
	assert.Equal(t, 0.0, c.PerformingProgress())

	for i := 0; i < 5; i++ {
		c.Update(dt)
	}
	assert.InDelta(t, 0.5, c.PerformingProgress(), 1e-9)

	for i := 0; i < 5; i++ {
		c.Update(dt)
	}
	assert.Equal(t, Moving, c.Status())
	assert.Equal(t, 1, c.CurrentStep())
	assert.Equal(t, 0.0, c.PerformingProgress())
}

func TestForceAbortOnIdleIsNoop(t *testing.T) {
	c, p := newLogged()
	assert.False(t, c.ForceAbort())
	assert.Equal(t, Idle, c.Status())
	assert.Empty(t, p.statuses)
	assert.Zero(t, p.returns)
}

func TestForceAbortWhilePerforming(t *testing.T) {
	c, p := newLogged()
	require.NoError(t, c.Dispatch(stations()))
	c.Update(dt)
	require.Equal(t, Performing, c.Status())

	assert.True(t, c.ForceAbort())
	assert.Equal(t, Returning, c.Status())
	assert.False(t, c.ForceAbort(), "already heading home")

	runUntilIdle(t, c)
	assert.Equal(t, 1, p.returns)
	assert.Zero(t, p.serves)

	// The next dispatch starts clean and serves normally.
	require.NoError(t, c.Dispatch(stations()))
	runUntilIdle(t, c)
	assert.Equal(t, 1, p.serves)
	assert.Equal(t, 2, p.returns)
}

func TestSelectionsRangeChecked(t *testing.T) {
	c, _ := newLogged()

	require.NoError(t, c.SetMaterial(1, 2))
	require.NoError(t, c.SetAction(0, 1))
	assert.Equal(t, []Selection{{Action: 1}, {Material: 2}}, c.Selections())

	assert.ErrorIs(t, c.SetMaterial(2, 0), ErrStepOutOfRange)
	assert.ErrorIs(t, c.SetAction(-1, 0), ErrStepOutOfRange)
	assert.ErrorIs(t, c.SetMaterial(0, 3), ErrValueOutOfRange)
	assert.ErrorIs(t, c.SetAction(1, -1), ErrValueOutOfRange)
	assert.Equal(t, []Selection{{Action: 1}, {Material: 2}}, c.Selections(), "rejected edits change nothing")

	require.NoError(t, c.Dispatch(stations()))
	assert.NoError(t, c.SetMaterial(0, 1), "selections stay editable mid-command")
}

func TestSelectionsReturnsCopy(t *testing.T) {
	c, _ := newLogged()
	s := c.Selections()
	s[0].Material = 2
	assert.Equal(t, 0, c.Selections()[0].Material)
}

func TestCrew(t *testing.T) {
	cr := NewCrew(testConfig(), nil, Hooks{})
	assert.Equal(t, 2, cr.Len())
	assert.Len(t, cr.Idle(), 2)

	c, err := cr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, geometry.V(-1, 0, 0), c.Home())
	_, err = cr.Get(2)
	assert.ErrorIs(t, err, ErrUnknown)

	require.NoError(t, c.Dispatch(stations()))
	assert.Equal(t, 1, cr.Busy())

	assert.False(t, cr.Decrement())
	cr.Increment()
	assert.Equal(t, 1, cr.InProgress())
	assert.True(t, cr.Decrement())
	assert.False(t, cr.Decrement())
	assert.Equal(t, 0, cr.InProgress())
}

func TestStatusTextRoundTrip(t *testing.T) {
	for _, s := range []Status{Idle, Moving, Performing, ServingDish, Returning} {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		var got Status
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, s, got)
	}
	var s Status
	assert.Error(t, s.UnmarshalText([]byte("dancing")))
}
