package queue

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocan/internal/dish"
	"cocan/internal/geometry"
	"cocan/internal/guest"
	"cocan/internal/simclock"
)

type harness struct {
	clock *simclock.Clock
	sched *simclock.Scheduler
	q     *Controller

	ready   []int
	left    []int
	allGone int
}

func testConfig() Config {
	return Config{
		SpawnSpot:        geometry.V(0, 0, 10),
		OrderingSpot:     geometry.V(0, 0, 0),
		WaitingServeSpot: geometry.V(2, 0, 0),
		ExitSpot:         geometry.V(5, 0, 0),
		OrderOffset:      geometry.V(0, 0, 1),
		ServeOffset:      geometry.V(0, 0, 1),
		WaitingDirection: geometry.V(1, 0, 0),
		SpawnIntervalMin: time.Second,
		SpawnIntervalMax: 3 * time.Second,
		Total:            4,
		MaxConcurrent:    3,
		Speed:            100,
		Variants: []dish.Preferences{
			{Liked: dish.NewSet("tomato")},
			{Hated: dish.NewSet("fish")},
		},
	}
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{clock: simclock.New(1)}
	h.sched = simclock.NewScheduler(h.clock)
	env := &guest.Env{
		Clock:      h.clock,
		Scheduler:  h.sched,
		OrderTexts: []string{"omelette", "curry"},
	}
	q, err := New(cfg, env, rand.New(rand.NewSource(7)), nil, Hooks{
		OnGuestReady: func(g *guest.Guest) { h.ready = append(h.ready, g.ID()) },
		OnGuestLeft:  func(g *guest.Guest) { h.left = append(h.left, g.ID()) },
		OnAllExited:  func() { h.allGone++ },
	})
	require.NoError(t, err)
	h.q = q
	return h
}

func (h *harness) tick(dt time.Duration) {
	h.clock.Advance(dt)
	h.q.Update(dt)
	h.sched.Process()
}

func (h *harness) checkCounters(t *testing.T) {
	t.Helper()
	c := h.q.Counters()
	assert.True(t, 0 <= c.Exits && c.Exits <= c.Orders && c.Orders <= c.Arrivals && c.Arrivals <= c.Total,
		"counters out of order: %+v", c)
	assert.LessOrEqual(t, c.Arrivals-c.Exits, 3)
}

func TestNewRejectsBadConfig(t *testing.T) {
	env := &guest.Env{Clock: simclock.New(1)}
	env.Scheduler = simclock.NewScheduler(env.Clock)

	bad := testConfig()
	bad.Total = 0
	_, err := New(bad, env, nil, nil, Hooks{})
	assert.Error(t, err)

	bad = testConfig()
	bad.SpawnIntervalMax = 0
	_, err = New(bad, env, nil, nil, Hooks{})
	assert.Error(t, err)

	_, err = New(testConfig(), &guest.Env{}, nil, nil, Hooks{})
	assert.Error(t, err)
}

func TestSpawnRespectsCapacity(t *testing.T) {
	h := newHarness(t, testConfig())

	assert.True(t, h.q.Spawn())
	assert.True(t, h.q.Spawn())
	assert.True(t, h.q.Spawn())
	assert.False(t, h.q.Spawn(), "capacity gate must hold at three present guests")
	assert.Equal(t, Counters{Arrivals: 3, Total: 4}, h.q.Counters())

	// Newcomers queue up behind whoever has not ordered yet.
	for i, g := range h.q.Guests() {
		assert.Equal(t, h.q.OrderSlot(i), g.Destination())
	}
}

func TestFrontGuestOrdersOthersWait(t *testing.T) {
	h := newHarness(t, testConfig())
	h.q.Spawn()
	h.q.Spawn()
	h.tick(time.Second)

	first, _ := h.q.Guest(0)
	second, _ := h.q.Guest(1)
	assert.Equal(t, guest.Ordering, first.Status())
	assert.True(t, first.Ready())
	assert.Equal(t, guest.WaitingOrder, second.Status())
	assert.Equal(t, []int{0}, h.ready)
	assert.True(t, h.q.HasGuestReadyToOrder())

	assert.Equal(t, guest.BubbleOrder, first.Bubble().Kind)
	assert.False(t, second.Bubble().Visible(), "only the front guest shows its order")
}

func TestAcceptOrderMovesLinesForward(t *testing.T) {
	h := newHarness(t, testConfig())
	h.q.Spawn()
	h.q.Spawn()
	h.q.Spawn()
	h.tick(time.Second)

	require.NoError(t, h.q.AcceptOrder())
	assert.Equal(t, 1, h.q.Counters().Orders)
	assert.Equal(t, 1, h.q.WaitingGuestCount())

	g0, _ := h.q.Guest(0)
	assert.Equal(t, guest.WaitingDish, g0.Status())
	assert.False(t, g0.Ready())
	assert.Equal(t, h.q.ServeSlot(0), g0.Destination())

	// Everyone behind the old front (orders was 0) moves one slot closer.
	for p := 1; p < 3; p++ {
		g, _ := h.q.Guest(p)
		assert.Equal(t, h.q.OrderSlot(p-1), g.Destination())
	}

	assert.False(t, h.q.HasGuestReadyToOrder(), "next guest is still walking up")
	h.tick(time.Second)
	g1, _ := h.q.Guest(1)
	assert.Equal(t, guest.Ordering, g1.Status())
	assert.True(t, h.q.HasGuestReadyToOrder())
	assert.Equal(t, []int{0, 1}, h.ready)
	h.checkCounters(t)
}

func TestAcceptOrderWithoutReadyGuestFails(t *testing.T) {
	h := newHarness(t, testConfig())
	assert.ErrorIs(t, h.q.AcceptOrder(), ErrNoGuestToOrder)

	h.q.Spawn()
	assert.ErrorIs(t, h.q.AcceptOrder(), ErrNoGuestToOrder, "guest has not reached the counter")
	assert.Equal(t, Counters{Arrivals: 1, Total: 4}, h.q.Counters())
}

func TestServeDishOnEmptyServeLineFails(t *testing.T) {
	h := newHarness(t, testConfig())
	h.q.Spawn()
	h.tick(time.Second)

	before := h.q.Counters()
	assert.ErrorIs(t, h.q.ServeDish(), ErrNoGuestToServe)
	assert.Equal(t, before, h.q.Counters())
}

func TestServeDishSendsGuestOut(t *testing.T) {
	h := newHarness(t, testConfig())
	h.q.Spawn()
	h.q.Spawn()
	h.tick(time.Second)
	require.NoError(t, h.q.AcceptOrder())
	h.tick(time.Second)
	require.NoError(t, h.q.AcceptOrder())

	require.NoError(t, h.q.ServeDish())
	assert.Equal(t, Counters{Arrivals: 2, Orders: 2, Exits: 1, Total: 4}, h.q.Counters())

	served, ok := h.q.ServedGuest()
	require.True(t, ok)
	assert.Equal(t, 0, served.ID())
	assert.Equal(t, guest.GotDish, served.Status())
	assert.Equal(t, geometry.V(5, 0, 0), served.Destination())

	next, ok := h.q.ServingGuest()
	require.True(t, ok)
	assert.Equal(t, 1, next.ID())
	assert.Equal(t, h.q.ServeSlot(0), next.Destination())

	h.tick(time.Second)
	assert.Equal(t, []int{0}, h.left)
	_, ok = h.q.Guest(0)
	assert.False(t, ok)
	assert.Equal(t, 1, h.q.Present())
}

func TestCapacityReopensAfterExit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrent = 1
	h := newHarness(t, cfg)

	require.True(t, h.q.Spawn())
	assert.False(t, h.q.Spawn())
	h.tick(time.Second)
	require.NoError(t, h.q.AcceptOrder())
	require.NoError(t, h.q.ServeDish())
	assert.True(t, h.q.Spawn(), "exit counter frees the slot even before the guest is gone")
}

func TestAllExitedFiresOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Total = 2
	h := newHarness(t, cfg)
	h.q.Spawn()
	h.q.Spawn()
	h.tick(time.Second)
	require.NoError(t, h.q.AcceptOrder())
	h.tick(time.Second)
	require.NoError(t, h.q.AcceptOrder())
	require.NoError(t, h.q.ServeDish())
	require.NoError(t, h.q.ServeDish())

	assert.False(t, h.q.Finished())
	h.tick(time.Second)
	h.tick(time.Second)

	assert.True(t, h.q.Finished())
	assert.Equal(t, 1, h.allGone)
	assert.ElementsMatch(t, []int{0, 1}, h.left)
	assert.False(t, h.q.Spawn())
}

func TestSpawnTimerPacing(t *testing.T) {
	cfg := testConfig()
	cfg.SpawnIntervalMin = 2 * time.Second
	cfg.SpawnIntervalMax = 2 * time.Second
	h := newHarness(t, cfg)
	h.q.Start()

	h.tick(100 * time.Millisecond)
	assert.Equal(t, 1, h.q.Counters().Arrivals, "first guest arrives on the first update")
	h.tick(time.Second)
	assert.Equal(t, 1, h.q.Counters().Arrivals)
	h.tick(time.Second)
	assert.Equal(t, 2, h.q.Counters().Arrivals)
}

func TestSpawnIntervalWithinBounds(t *testing.T) {
	h := newHarness(t, testConfig())
	for i := 0; i < 200; i++ {
		d := h.q.nextInterval()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestCountersHoldUnderRandomPlay(t *testing.T) {
	cfg := testConfig()
	cfg.Total = 12
	cfg.Speed = 3
	h := newHarness(t, cfg)
	h.q.Start()
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 4000 && !h.q.Finished(); i++ {
		h.tick(50 * time.Millisecond)
		switch r.Intn(6) {
		case 0:
			if h.q.HasGuestReadyToOrder() {
				require.NoError(t, h.q.AcceptOrder())
			}
		case 1:
			if h.q.WaitingGuestCount() > 0 {
				require.NoError(t, h.q.ServeDish())
			}
		}
		h.checkCounters(t)
	}
	assert.True(t, h.q.Finished())
	assert.Equal(t, 1, h.allGone)
	assert.Len(t, h.left, 12)
}
