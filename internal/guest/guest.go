// Package guest models one customer: its status, its walk between queue
// slots, the timers that measure how long it waited and how long its dish
// took, and the speech bubble over its head.
package guest

import (
	"fmt"
	"time"

	"cocan/internal/dish"
	"cocan/internal/geometry"
	"cocan/internal/simclock"
	"cocan/internal/stage"
)

// DefaultOrderText is shown when no order texts are configured.
const DefaultOrderText = "dish"

// DefaultReactionWindow is how long a reaction stays over a guest's head.
const DefaultReactionWindow = 2 * time.Second

// Env is shared by every guest of one kitchen.
type Env struct {
	Clock          *simclock.Clock
	Scheduler      *simclock.Scheduler
	Presenter      stage.Presenter
	OrderTexts     []string
	ReactionWindow time.Duration

	// OnBubble is called whenever a guest's bubble changes.
	OnBubble func(g *Guest)
	// OnCookingFinished is called once each time a guest's cook timer stops.
	OnCookingFinished func(g *Guest)
}

// Guest is one customer.
type Guest struct {
	id      int
	variant int
	prefs   dish.Preferences
	status  Status
	ready   bool
	gone    bool

	mover    *geometry.Mover
	onArrive func(*Guest)
	env      *Env

	orderText string
	bubble    Bubble

	cooking     bool
	cookStart   time.Duration
	cookElapsed time.Duration
	cookTimed   bool

	waiting     bool
	waitStart   time.Duration
	waitElapsed time.Duration
}

// New creates a guest standing at spawn. onArrive is called from Update every
// time the guest reaches a destination. Unset Env fields are filled with
// defaults.
func New(id, variant int, prefs dish.Preferences, spawn geometry.Vec3, speed float64, env *Env, onArrive func(*Guest)) *Guest {
	if env.Presenter == nil {
		env.Presenter = stage.Nop{}
	}
	if env.ReactionWindow <= 0 {
		env.ReactionWindow = DefaultReactionWindow
	}
	g := &Guest{
		id:        id,
		variant:   variant,
		prefs:     prefs,
		status:    Entering,
		mover:     geometry.NewMover(spawn, speed),
		onArrive:  onArrive,
		env:       env,
		orderText: DefaultOrderText,
	}
	if n := len(env.OrderTexts); n > 0 {
		g.orderText = env.OrderTexts[id%n]
	}
	return g
}

func (g *Guest) ID() int                       { return g.id }
func (g *Guest) Variant() int                  { return g.variant }
func (g *Guest) Status() Status                { return g.status }
func (g *Guest) Preferences() dish.Preferences { return g.prefs }
func (g *Guest) Position() geometry.Vec3       { return g.mover.Position() }
func (g *Guest) Destination() geometry.Vec3    { return g.mover.Destination() }
func (g *Guest) Arrived() bool                 { return g.mover.Arrived() }
func (g *Guest) OrderText() string             { return g.orderText }
func (g *Guest) Bubble() Bubble                { return g.bubble }

// Ready reports whether the guest is standing at the ordering spot, first in
// line, waiting for its order to be taken.
func (g *Guest) Ready() bool { return g.ready }

// SetReady flags the guest as first in line and at the counter.
func (g *Guest) SetReady(ready bool) { g.ready = ready }

// Gone reports whether the guest has left the restaurant.
func (g *Guest) Gone() bool { return g.gone }

// Leave marks the guest as gone. It no longer moves or reports arrivals.
func (g *Guest) Leave() {
	g.gone = true
	g.ready = false
	g.env.Scheduler.Cancel(g.bubbleKey())
}

func (g *Guest) ref() stage.AgentRef { return stage.Guest(g.id) }

// Advance moves the guest to status to, applying the side effects of
// entering it.
func (g *Guest) Advance(to Status) error {
	if !CanAdvance(g.status, to) {
		return fmt.Errorf("guest %d: %s -> %s: %w", g.id, g.status, to, ErrInvalidTransition)
	}
	g.status = to
	switch to {
	case WaitingOrder, Ordering:
		g.ShowOrder()
	case WaitingDish:
		g.ready = false
	case GotDish:
		g.ready = false
		g.StopWaiting()
		g.StopCooking()
		g.env.Presenter.Cue(g.ref(), stage.CueExit)
	}
	return nil
}

// SetDestination sends the guest walking toward target.
func (g *Guest) SetDestination(target geometry.Vec3) {
	dir := g.mover.SetDestination(target)
	if !dir.IsZero() {
		g.env.Presenter.Face(g.ref(), dir)
	}
	if g.status != GotDish {
		g.env.Presenter.Cue(g.ref(), stage.CueWalk)
	}
}

// Face turns the guest toward dir.
func (g *Guest) Face(dir geometry.Vec3) {
	g.env.Presenter.Face(g.ref(), dir)
}

// Update walks the guest for dt and fires the arrival callback when it
// reaches its destination.
func (g *Guest) Update(dt time.Duration) {
	if g.gone {
		return
	}
	if g.mover.Step(dt) {
		if g.status != GotDish {
			g.env.Presenter.Cue(g.ref(), stage.CueIdle)
		}
		if g.onArrive != nil {
			g.onArrive(g)
		}
	}
}

// StartCooking starts the cook timer for this guest's dish.
func (g *Guest) StartCooking() {
	g.cooking = true
	g.cookTimed = true
	g.cookStart = g.env.Clock.Now()
	g.cookElapsed = 0
}

// StopCooking freezes the cook timer. It is a no-op when the timer is not
// running, so the finished callback fires once per StartCooking.
func (g *Guest) StopCooking() {
	if !g.cooking {
		return
	}
	g.cooking = false
	g.cookElapsed = g.env.Clock.Now() - g.cookStart
	if g.env.OnCookingFinished != nil {
		g.env.OnCookingFinished(g)
	}
}

// IsCooking reports whether the cook timer is running.
func (g *Guest) IsCooking() bool { return g.cooking }

// CookTimed reports whether the cook timer was ever started.
func (g *Guest) CookTimed() bool { return g.cookTimed }

// CookingTime is the live cook duration while cooking and the frozen value
// after StopCooking.
func (g *Guest) CookingTime() time.Duration {
	if g.cooking {
		return g.env.Clock.Now() - g.cookStart
	}
	return g.cookElapsed
}

// StartWaiting starts the wait timer. Calling it again while waiting is a
// no-op.
func (g *Guest) StartWaiting() {
	if g.waiting {
		return
	}
	g.waiting = true
	g.waitStart = g.env.Clock.Now()
	g.waitElapsed = 0
}

// StopWaiting freezes the wait timer.
func (g *Guest) StopWaiting() {
	if !g.waiting {
		return
	}
	g.waiting = false
	g.waitElapsed = g.env.Clock.Now() - g.waitStart
}

// WaitingTime is how long the guest has waited since reaching the counter.
func (g *Guest) WaitingTime() time.Duration {
	if g.waiting {
		return g.env.Clock.Now() - g.waitStart
	}
	return g.waitElapsed
}
