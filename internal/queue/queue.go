// Package queue runs the line of guests in front of the counter. Guests are
// indexed by arrival and tracked with three counters that only ever move
// forward: arrivals, orders taken and dishes served. Every guest's place in
// either line is derived from those counters.
package queue

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"cocan/internal/dish"
	"cocan/internal/geometry"
	"cocan/internal/guest"
	"cocan/internal/logx"
)

var (
	// ErrNoGuestToOrder is returned by AcceptOrder when nobody is standing
	// at the counter ready to order.
	ErrNoGuestToOrder = errors.New("no guest ready to order")
	// ErrNoGuestToServe is returned by ServeDish when the serve line is
	// empty.
	ErrNoGuestToServe = errors.New("no guest waiting for a dish")
)

// Config is the static layout and pacing of the queue.
type Config struct {
	SpawnSpot        geometry.Vec3
	OrderingSpot     geometry.Vec3
	WaitingServeSpot geometry.Vec3
	ExitSpot         geometry.Vec3

	// OrderOffset and ServeOffset separate neighbours in each line.
	OrderOffset geometry.Vec3
	ServeOffset geometry.Vec3
	// WaitingDirection is where guests face once they reach their slot.
	WaitingDirection geometry.Vec3

	SpawnIntervalMin time.Duration
	SpawnIntervalMax time.Duration
	Total            int
	MaxConcurrent    int
	Speed            float64

	// Variants are the guest profiles a spawn picks from.
	Variants []dish.Preferences
}

// Hooks are called synchronously from the controller.
type Hooks struct {
	OnGuestSpawned func(g *guest.Guest)
	OnGuestReady   func(g *guest.Guest)
	OnGuestLeft    func(g *guest.Guest)
	OnAllExited    func()
}

// Counters is a snapshot of the queue's progress.
type Counters struct {
	Arrivals int `json:"arrivals"`
	Orders   int `json:"orders"`
	Exits    int `json:"exits"`
	Total    int `json:"total"`
}

// Controller owns every guest of one game.
type Controller struct {
	cfg   Config
	env   *guest.Env
	rng   *rand.Rand
	log   *logx.Logger
	hooks Hooks

	active     bool
	spawnTimer time.Duration

	// guests is indexed by arrival id; entries are nil once the guest left.
	guests   []*guest.Guest
	arrivals int
	orders   int
	exits    int
	allGone  bool
}

// New creates a controller. It does not spawn until Start is called.
func New(cfg Config, env *guest.Env, rng *rand.Rand, log *logx.Logger, hooks Hooks) (*Controller, error) {
	switch {
	case cfg.Total < 1:
		return nil, fmt.Errorf("queue: total guests must be positive, got %d", cfg.Total)
	case cfg.MaxConcurrent < 1:
		return nil, fmt.Errorf("queue: max concurrent guests must be positive, got %d", cfg.MaxConcurrent)
	case cfg.SpawnIntervalMin < 0 || cfg.SpawnIntervalMax < cfg.SpawnIntervalMin:
		return nil, fmt.Errorf("queue: invalid spawn interval [%s, %s]", cfg.SpawnIntervalMin, cfg.SpawnIntervalMax)
	case env == nil || env.Clock == nil || env.Scheduler == nil:
		return nil, errors.New("queue: guest environment needs a clock and a scheduler")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if log == nil {
		log = logx.Discard()
	}
	return &Controller{
		cfg:    cfg,
		env:    env,
		rng:    rng,
		log:    log,
		hooks:  hooks,
		guests: make([]*guest.Guest, 0, cfg.Total),
	}, nil
}

// Start resets the counters and arms the first spawn for the next Update.
func (c *Controller) Start() {
	c.active = true
	c.spawnTimer = 0
	c.log.Infof("queue started: %d guests, at most %d at once", c.cfg.Total, c.cfg.MaxConcurrent)
}

// Stop halts spawning. Guests already present keep walking.
func (c *Controller) Stop() { c.active = false }

// Update counts down the spawn timer and walks every guest.
func (c *Controller) Update(dt time.Duration) {
	if c.active {
		c.spawnTimer -= dt
		if c.spawnTimer <= 0 {
			c.Spawn()
		}
	}
	for _, g := range c.guests {
		if g != nil {
			g.Update(dt)
		}
	}
}

// CanSpawn reports whether both the total and the capacity gate are open.
func (c *Controller) CanSpawn() bool {
	return c.arrivals < c.cfg.Total && c.arrivals-c.exits < c.cfg.MaxConcurrent
}

// Spawn brings in the next guest and re-arms the spawn timer. It reports
// false, changing nothing, when a gate is closed.
func (c *Controller) Spawn() bool {
	if !c.CanSpawn() {
		return false
	}
	variant := 0
	var prefs dish.Preferences
	if n := len(c.cfg.Variants); n > 0 {
		variant = c.rng.Intn(n)
		prefs = c.cfg.Variants[variant]
	}
	g := guest.New(c.arrivals, variant, prefs, c.cfg.SpawnSpot, c.cfg.Speed, c.env, c.onArrive)
	c.guests = append(c.guests, g)
	g.SetDestination(c.OrderSlot(c.arrivals - c.orders))
	c.arrivals++
	c.spawnTimer = c.nextInterval()

	c.log.Debugf("guest %d spawned (variant %d), next in %s", g.ID(), variant, c.spawnTimer)
	if c.hooks.OnGuestSpawned != nil {
		c.hooks.OnGuestSpawned(g)
	}
	c.refreshPrompts()
	return true
}

func (c *Controller) nextInterval() time.Duration {
	span := c.cfg.SpawnIntervalMax - c.cfg.SpawnIntervalMin
	if span <= 0 {
		return c.cfg.SpawnIntervalMin
	}
	return c.cfg.SpawnIntervalMin + time.Duration(c.rng.Int63n(int64(span)+1))
}

// AcceptOrder takes the order of the guest at the counter: that guest joins
// the serve line and everyone behind it steps forward.
func (c *Controller) AcceptOrder() error {
	if !c.HasGuestReadyToOrder() {
		return ErrNoGuestToOrder
	}
	g := c.guests[c.orders]
	if err := g.Advance(guest.WaitingDish); err != nil {
		return err
	}
	for i := c.exits; i <= c.orders; i++ {
		c.send(i, c.ServeSlot(i-c.exits))
	}
	for i := c.orders + 1; i < c.arrivals; i++ {
		c.send(i, c.OrderSlot(i-c.orders-1))
	}
	c.orders++
	c.log.Debugf("order taken from guest %d (orders=%d)", g.ID(), c.orders)
	c.refreshPrompts()
	return nil
}

// ServeDish hands a dish to the first guest of the serve line and sends it
// to the exit.
func (c *Controller) ServeDish() error {
	if c.exits >= c.orders || c.guests[c.exits] == nil {
		return ErrNoGuestToServe
	}
	g := c.guests[c.exits]
	if err := g.Advance(guest.GotDish); err != nil {
		return err
	}
	g.SetDestination(c.cfg.ExitSpot)
	for i := c.exits + 1; i < c.orders; i++ {
		c.send(i, c.ServeSlot(i-c.exits-1))
	}
	c.exits++
	c.log.Debugf("guest %d served (exits=%d)", g.ID(), c.exits)
	c.refreshPrompts()
	return nil
}

func (c *Controller) send(id int, to geometry.Vec3) {
	if g := c.guests[id]; g != nil {
		g.SetDestination(to)
	}
}

// OrderSlot is the position n places behind the ordering spot.
func (c *Controller) OrderSlot(n int) geometry.Vec3 {
	return c.cfg.OrderingSpot.Add(c.cfg.OrderOffset.Scale(float64(n)))
}

// ServeSlot is the position n places behind the serve spot.
func (c *Controller) ServeSlot(n int) geometry.Vec3 {
	return c.cfg.WaitingServeSpot.Add(c.cfg.ServeOffset.Scale(float64(n)))
}

func (c *Controller) onArrive(g *guest.Guest) {
	switch g.Status() {
	case guest.Entering:
		g.Face(c.cfg.WaitingDirection)
		c.atCounter(g)
		g.StartWaiting()
	case guest.WaitingOrder:
		g.Face(c.cfg.WaitingDirection)
		c.atCounter(g)
	case guest.Ordering, guest.WaitingDish:
		g.Face(c.cfg.WaitingDirection)
	case guest.GotDish:
		if g.ID() < c.exits {
			c.remove(g)
		}
	}
	c.refreshPrompts()
}

func (c *Controller) atCounter(g *guest.Guest) {
	to := guest.WaitingOrder
	if g.ID() == c.orders {
		to = guest.Ordering
	} else if g.Status() != guest.Entering {
		return
	}
	if err := g.Advance(to); err != nil {
		c.log.Errorf("%v", err)
		return
	}
	if to == guest.Ordering {
		g.SetReady(true)
		c.log.Debugf("guest %d ready to order", g.ID())
		if c.hooks.OnGuestReady != nil {
			c.hooks.OnGuestReady(g)
		}
	}
}

func (c *Controller) remove(g *guest.Guest) {
	g.Leave()
	c.guests[g.ID()] = nil
	c.log.Debugf("guest %d left", g.ID())
	if c.hooks.OnGuestLeft != nil {
		c.hooks.OnGuestLeft(g)
	}
	if c.Finished() && !c.allGone {
		c.allGone = true
		c.log.Infof("all %d guests have left", c.cfg.Total)
		if c.hooks.OnAllExited != nil {
			c.hooks.OnAllExited()
		}
	}
}

// refreshPrompts shows the order text over the guest at the front of the
// order line and hides it everywhere else.
func (c *Controller) refreshPrompts() {
	for i, g := range c.guests {
		if g == nil {
			continue
		}
		if i == c.orders {
			g.ShowOrder()
		} else {
			g.HideOrder()
		}
	}
}

// WaitingGuestCount is the length of the serve line.
func (c *Controller) WaitingGuestCount() int { return c.orders - c.exits }

// OrderLineCount is the number of guests that have not ordered yet.
func (c *Controller) OrderLineCount() int { return c.arrivals - c.orders }

// HasGuestReadyToOrder reports whether the guest at the front of the order
// line is standing at the counter.
func (c *Controller) HasGuestReadyToOrder() bool {
	g, ok := c.OrderingGuest()
	return ok && g.Ready() && g.Status() == guest.Ordering
}

// OrderingGuest returns the guest at the front of the order line.
func (c *Controller) OrderingGuest() (*guest.Guest, bool) { return c.at(c.orders, c.arrivals) }

// ServingGuest returns the guest that the next dish goes to.
func (c *Controller) ServingGuest() (*guest.Guest, bool) { return c.at(c.exits, c.orders) }

// ServedGuest returns the guest that received the most recent dish, if it is
// still present.
func (c *Controller) ServedGuest() (*guest.Guest, bool) { return c.at(c.exits-1, c.exits) }

// Guest returns the guest with arrival id, if it is still present.
func (c *Controller) Guest(id int) (*guest.Guest, bool) { return c.at(id, c.arrivals) }

func (c *Controller) at(i, limit int) (*guest.Guest, bool) {
	if i < 0 || i >= limit || c.guests[i] == nil {
		return nil, false
	}
	return c.guests[i], true
}

// Guests returns the present guests in arrival order.
func (c *Controller) Guests() []*guest.Guest {
	out := make([]*guest.Guest, 0, c.Present())
	for _, g := range c.guests {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

// Present counts guests still in the restaurant, including those walking
// out.
func (c *Controller) Present() int {
	n := 0
	for _, g := range c.guests {
		if g != nil {
			n++
		}
	}
	return n
}

// Counters returns the three counters and the configured total.
func (c *Controller) Counters() Counters {
	return Counters{Arrivals: c.arrivals, Orders: c.orders, Exits: c.exits, Total: c.cfg.Total}
}

// Finished reports whether every guest was served and has left.
func (c *Controller) Finished() bool {
	return c.exits == c.cfg.Total && c.Present() == 0
}

// SpawnTimer is the time left until the next spawn attempt.
func (c *Controller) SpawnTimer() time.Duration { return c.spawnTimer }
