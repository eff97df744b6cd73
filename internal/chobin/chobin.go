// Package chobin runs the kitchen assistants. A chobin receives a command of
// a fixed number of steps, walks to each step's station, performs there for
// a fixed time, carries the dish to the serving spot and walks back to its
// waiting spot.
package chobin

import (
	"errors"
	"fmt"
	"time"

	"cocan/internal/geometry"
	"cocan/internal/stage"
)

// Status is the chobin's current task phase.
type Status int

const (
	Idle Status = iota
	Moving
	Performing
	ServingDish
	Returning
)

var statusNames = [...]string{
	Idle:        "idle",
	Moving:      "moving",
	Performing:  "performing",
	ServingDish: "serving_dish",
	Returning:   "returning",
}

func (s Status) String() string {
	if s < Idle || s > Returning {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown chobin status %q", text)
}

var (
	ErrNotIdle         = errors.New("chobin is not idle")
	ErrStepOutOfRange  = errors.New("command step out of range")
	ErrValueOutOfRange = errors.New("selection out of range")
	ErrTargetCount     = errors.New("target count does not match command count")
	ErrUnknown         = errors.New("unknown chobin")
)

const (
	DefaultArrivalEpsilon = 1e-5
	DefaultServingRadius  = 0.1
	DefaultWaitingRadius  = 1.0
	DefaultPerformingTime = 2 * time.Second
)

// Target is a kitchen station: where to stand and which way to face while
// performing.
type Target struct {
	Position geometry.Vec3 `json:"position"`
	Facing   geometry.Vec3 `json:"facing"`
}

// Selection is the material and action chosen for one command step.
type Selection struct {
	Material int `json:"material"`
	Action   int `json:"action"`
}

// Config is shared by every chobin of a crew.
type Config struct {
	WaitingSpots   []geometry.Vec3
	ServingSpot    geometry.Vec3
	Speed          float64
	PerformingTime time.Duration
	ArrivalEpsilon float64
	ServingRadius  float64
	WaitingRadius  float64
	CommandCount   int
	Materials      int
	Actions        int
}

func (c *Config) applyDefaults() {
	if c.PerformingTime <= 0 {
		c.PerformingTime = DefaultPerformingTime
	}
	if c.ArrivalEpsilon <= 0 {
		c.ArrivalEpsilon = DefaultArrivalEpsilon
	}
	if c.ServingRadius <= 0 {
		c.ServingRadius = DefaultServingRadius
	}
	if c.WaitingRadius <= 0 {
		c.WaitingRadius = DefaultWaitingRadius
	}
}

// Hooks are called synchronously from Update and ForceAbort.
type Hooks struct {
	// OnServe fires when the chobin reaches the serving spot, at most once
	// per dispatch.
	OnServe func(c *Chobin)
	// OnReturn fires when the chobin is back at its waiting spot.
	OnReturn func(c *Chobin)
	// OnStatus fires on every status change.
	OnStatus func(c *Chobin, from Status)
}

// Chobin is one assistant.
type Chobin struct {
	id        int
	cfg       Config
	home      geometry.Vec3
	presenter stage.Presenter
	hooks     Hooks

	status     Status
	selections []Selection
	targets    []Target
	current    int
	remaining  time.Duration
	served     bool
	mover      *geometry.Mover
}

// New creates an idle chobin at its waiting spot with every selection at 0.
func New(id int, home geometry.Vec3, cfg Config, presenter stage.Presenter, hooks Hooks) *Chobin {
	cfg.applyDefaults()
	if presenter == nil {
		presenter = stage.Nop{}
	}
	return &Chobin{
		id:         id,
		cfg:        cfg,
		home:       home,
		presenter:  presenter,
		hooks:      hooks,
		selections: make([]Selection, cfg.CommandCount),
		mover:      geometry.NewMover(home, cfg.Speed),
	}
}

func (c *Chobin) ID() int                 { return c.id }
func (c *Chobin) Status() Status          { return c.status }
func (c *Chobin) Position() geometry.Vec3 { return c.mover.Position() }
func (c *Chobin) Home() geometry.Vec3     { return c.home }
func (c *Chobin) CurrentStep() int        { return c.current }

// IsCooking reports whether the chobin is doing anything but waiting for a
// command.
func (c *Chobin) IsCooking() bool { return c.status != Idle }

// PreServe reports whether the chobin is carrying out a command that has not
// been served yet.
func (c *Chobin) PreServe() bool {
	return c.status == Moving || c.status == Performing || c.status == ServingDish
}

// Selections returns a copy of the per-step selections.
func (c *Chobin) Selections() []Selection {
	out := make([]Selection, len(c.selections))
	copy(out, c.selections)
	return out
}

// SetMaterial changes the material of one step. Selections may change at any
// time, even mid-command; the dish is built from them when it is served.
func (c *Chobin) SetMaterial(step, material int) error {
	if err := c.checkStep(step); err != nil {
		return err
	}
	if material < 0 || (c.cfg.Materials > 0 && material >= c.cfg.Materials) {
		return fmt.Errorf("chobin %d: material %d of %d: %w", c.id, material, c.cfg.Materials, ErrValueOutOfRange)
	}
	c.selections[step].Material = material
	return nil
}

// SetAction changes the action of one step.
func (c *Chobin) SetAction(step, action int) error {
	if err := c.checkStep(step); err != nil {
		return err
	}
	if action < 0 || (c.cfg.Actions > 0 && action >= c.cfg.Actions) {
		return fmt.Errorf("chobin %d: action %d of %d: %w", c.id, action, c.cfg.Actions, ErrValueOutOfRange)
	}
	c.selections[step].Action = action
	return nil
}

func (c *Chobin) checkStep(step int) error {
	if step < 0 || step >= len(c.selections) {
		return fmt.Errorf("chobin %d: step %d of %d: %w", c.id, step, len(c.selections), ErrStepOutOfRange)
	}
	return nil
}

// Dispatch starts a command. targets holds one station per step.
func (c *Chobin) Dispatch(targets []Target) error {
	if c.status != Idle {
		return fmt.Errorf("chobin %d is %s: %w", c.id, c.status, ErrNotIdle)
	}
	if len(targets) != len(c.selections) || len(targets) == 0 {
		return fmt.Errorf("chobin %d: got %d targets for %d steps: %w", c.id, len(targets), len(c.selections), ErrTargetCount)
	}
	c.targets = append(c.targets[:0], targets...)
	c.current = 0
	c.served = false
	c.setStatus(Moving)
	return nil
}

// ForceAbort cancels the current command and sends the chobin home without
// serving. It reports whether a pre-serve command was cancelled; on an idle
// or already returning chobin it does nothing.
func (c *Chobin) ForceAbort() bool {
	if !c.PreServe() {
		return false
	}
	c.remaining = 0
	c.setStatus(Returning)
	return true
}

// Update advances the chobin by dt.
func (c *Chobin) Update(dt time.Duration) {
	c.mover.Step(dt)
	pos := c.mover.Position()
	switch c.status {
	case Moving:
		if pos.Dist(c.targets[c.current].Position) < c.cfg.ArrivalEpsilon {
			c.setStatus(Performing)
		}
	case Performing:
		c.remaining -= dt
		if c.remaining <= 0 {
			c.remaining = 0
			if c.current < len(c.targets)-1 {
				c.current++
				c.setStatus(Moving)
			} else {
				c.setStatus(ServingDish)
			}
		}
	case ServingDish:
		if pos.Within(c.cfg.ServingSpot, c.cfg.ServingRadius) {
			if !c.served {
				c.served = true
				if c.hooks.OnServe != nil {
					c.hooks.OnServe(c)
				}
			}
			c.setStatus(Returning)
		}
	case Returning:
		if pos.Within(c.home, c.cfg.WaitingRadius) {
			c.setStatus(Idle)
		}
	}
}

// PerformingProgress is how far the current performing step is, from 0 to 1.
// It is 0 outside Performing.
func (c *Chobin) PerformingProgress() float64 {
	if c.status != Performing || c.cfg.PerformingTime <= 0 {
		return 0
	}
	return 1 - float64(c.remaining)/float64(c.cfg.PerformingTime)
}

func (c *Chobin) ref() stage.AgentRef { return stage.Chobin(c.id) }

func (c *Chobin) walk(to geometry.Vec3) {
	dir := c.mover.SetDestination(to)
	if !dir.IsZero() {
		c.presenter.Face(c.ref(), dir)
	}
	c.presenter.Cue(c.ref(), stage.CueWalk)
}

func (c *Chobin) setStatus(s Status) {
	from := c.status
	c.status = s
	switch s {
	case Idle:
		c.mover.Stop()
		c.presenter.Cue(c.ref(), stage.CueIdle)
	case Moving:
		c.walk(c.targets[c.current].Position)
	case Performing:
		c.remaining = c.cfg.PerformingTime
		if f := c.targets[c.current].Facing; !f.IsZero() {
			c.presenter.Face(c.ref(), f)
		}
		c.presenter.Cue(c.ref(), stage.CuePerform)
	case ServingDish:
		c.walk(c.cfg.ServingSpot)
	case Returning:
		c.walk(c.home)
	}
	if c.hooks.OnStatus != nil {
		c.hooks.OnStatus(c, from)
	}
	if s == Idle && c.hooks.OnReturn != nil {
		c.hooks.OnReturn(c)
	}
}
