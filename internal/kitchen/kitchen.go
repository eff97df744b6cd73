// Package kitchen wires the guest queue, the chobin crew and the score model
// into one game. A Kitchen is single-threaded: every method must be called
// from the goroutine that calls Tick. Loop provides that goroutine for
// servers.
package kitchen

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"cocan/internal/chobin"
	"cocan/internal/dish"
	"cocan/internal/guest"
	"cocan/internal/logx"
	"cocan/internal/queue"
	"cocan/internal/simclock"
	"cocan/internal/stage"
)

var (
	ErrUnknownChobin      = errors.New("unknown chobin")
	ErrMaterialOutOfRange = errors.New("material out of range")
	ErrActionOutOfRange   = errors.New("action out of range")
	ErrStepOutOfRange     = errors.New("step out of range")
	ErrNotIdle            = errors.New("chobin is busy")
	ErrNothingToAbort     = errors.New("chobin has no command to abort")
	ErrNotStarted         = errors.New("kitchen not started")
)

// Button is the affordance floating over a chobin.
type Button int

const (
	ButtonHidden Button = iota
	ButtonWaiting
	ButtonPerforming
)

func (b Button) String() string {
	switch b {
	case ButtonWaiting:
		return "waiting"
	case ButtonPerforming:
		return "performing"
	default:
		return "hidden"
	}
}

func (b Button) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Button) UnmarshalText(text []byte) error {
	for _, c := range []Button{ButtonHidden, ButtonWaiting, ButtonPerforming} {
		if c.String() == string(text) {
			*b = c
			return nil
		}
	}
	return fmt.Errorf("unknown button %q", text)
}

// Scoreboard holds the running totals shown to the player.
type Scoreboard struct {
	Served     int `json:"served"`
	TotalScore int `json:"total_score"`
	TotalSum   int `json:"total_sum"`
}

// Kitchen is one game in progress.
type Kitchen struct {
	cfg Config
	id  string

	clock *simclock.Clock
	sched *simclock.Scheduler
	rng   *rand.Rand
	log   *logx.Logger

	presenter stage.Presenter
	sink      stage.Sink
	recorder  Recorder
	ledger    Ledger

	queue *queue.Controller
	crew  *chobin.Crew

	buttons   []Button
	panel     int
	board     Scoreboard
	discarded int
	aborted   int
	started   bool
	finished  bool
}

// New validates cfg and builds a kitchen. Nothing moves until Start.
func New(cfg Config, opts ...Option) (*Kitchen, error) {
	k := &Kitchen{
		cfg:       cfg,
		id:        uuid.NewString(),
		presenter: stage.Nop{},
		sink:      stage.Discard,
		recorder:  nopRecorder{},
		ledger:    nopLedger{},
		log:       logx.Default("kitchen"),
		panel:     -1,
	}
	for _, opt := range opts {
		opt(k)
	}
	if err := cfg.Validate(); err != nil {
		for _, e := range unjoin(err) {
			k.log.Errorf("config: %v", e)
		}
		return nil, fmt.Errorf("kitchen config: %w", err)
	}
	if k.rng == nil {
		k.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	k.clock = simclock.New(cfg.TimeScale)
	k.sched = simclock.NewScheduler(k.clock)
	k.log = k.log.WithClock(k.clock)

	env := &guest.Env{
		Clock:             k.clock,
		Scheduler:         k.sched,
		Presenter:         k.presenter,
		OrderTexts:        cfg.OrderTexts,
		ReactionWindow:    cfg.ReactionWindow,
		OnBubble:          k.onBubble,
		OnCookingFinished: k.onCookingFinished,
	}
	q, err := queue.New(cfg.Queue, env, k.rng, k.log.Named("queue"), queue.Hooks{
		OnGuestSpawned: k.onGuestSpawned,
		OnGuestReady:   k.onGuestReady,
		OnGuestLeft:    k.onGuestLeft,
		OnAllExited:    k.onAllExited,
	})
	if err != nil {
		return nil, err
	}
	k.queue = q
	k.crew = chobin.NewCrew(cfg.chobinConfig(), k.presenter, chobin.Hooks{
		OnServe:  k.onServe,
		OnReturn: k.onReturn,
		OnStatus: k.onChobinStatus,
	})
	k.buttons = make([]Button, k.crew.Len())
	return k, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Start opens the restaurant.
func (k *Kitchen) Start() {
	if k.started {
		return
	}
	k.started = true
	if err := k.ledger.BeginSession(k.sessionInfo()); err != nil {
		k.log.Warnf("ledger: begin session: %v", err)
	}
	k.queue.Start()
	k.log.Infof("session %s started (%s): %d guests, %d chobins", k.id, k.scenario(), k.cfg.Queue.Total, k.crew.Len())
	k.judgeNeedToCook()
}

func (k *Kitchen) scenario() string {
	if k.cfg.Scenario == "" {
		return "custom"
	}
	return k.cfg.Scenario
}

func (k *Kitchen) sessionInfo() SessionInfo {
	return SessionInfo{
		ID:       k.id,
		Scenario: k.scenario(),
		Guests:   k.cfg.Queue.Total,
		Chobins:  k.crew.Len(),
		Seed:     k.cfg.Seed,
	}
}

// Tick advances the game by dt: chobins first, then the queue, then
// scheduled events.
func (k *Kitchen) Tick(dt time.Duration) {
	if !k.started {
		return
	}
	step := k.clock.Advance(dt)
	k.crew.Update(step)
	k.queue.Update(step)
	k.sched.Process()
	c := k.queue.Counters()
	k.recorder.Gauges(Gauges{
		OrderLine:  c.Arrivals - c.Orders,
		ServeLine:  c.Orders - c.Exits,
		Present:    k.queue.Present(),
		BusyChobin: k.crew.Busy(),
	})
}

func (k *Kitchen) ID() string               { return k.id }
func (k *Kitchen) Started() bool            { return k.started }
func (k *Kitchen) Finished() bool           { return k.finished }
func (k *Kitchen) Scoreboard() Scoreboard   { return k.board }
func (k *Kitchen) Counters() queue.Counters { return k.queue.Counters() }
func (k *Kitchen) InProgress() int          { return k.crew.InProgress() }
func (k *Kitchen) Clock() *simclock.Clock   { return k.clock }
func (k *Kitchen) Materials() []Material    { return k.cfg.Materials }
func (k *Kitchen) Actions() []Action        { return k.cfg.Actions }
func (k *Kitchen) CommandCount() int        { return k.cfg.Chobins.CommandCount }
func (k *Kitchen) Discarded() int           { return k.discarded }

// Buttons returns every chobin's button.
func (k *Kitchen) Buttons() []Button {
	out := make([]Button, len(k.buttons))
	copy(out, k.buttons)
	return out
}

// Chobin returns the chobin with id.
func (k *Kitchen) Chobin(id int) (*chobin.Chobin, error) {
	c, err := k.crew.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChobin, id)
	}
	return c, nil
}

// Guest returns a present guest by arrival id.
func (k *Kitchen) Guest(id int) (*guest.Guest, bool) { return k.queue.Guest(id) }

// NextRecipient is the guest that a command submitted now would feed: the
// guest at exits + in-progress, counting through the serve line into the
// order line.
func (k *Kitchen) NextRecipient() (*guest.Guest, bool) {
	c := k.queue.Counters()
	return k.queue.Guest(c.Exits + k.crew.InProgress())
}

// NeedToCook reports whether more commands are needed: fewer commands in
// progress than guests in the serve line, or a guest waiting to order.
func (k *Kitchen) NeedToCook() bool {
	return k.crew.InProgress() < k.queue.WaitingGuestCount() || k.queue.HasGuestReadyToOrder()
}

func (k *Kitchen) publish(e stage.Event) {
	e.Tick = k.clock.Tick()
	e.At = k.clock.Now()
	k.sink.Publish(e)
}

func (k *Kitchen) publishScoreboard() {
	k.publish(stage.Event{
		Kind: stage.EventScoreboard,
		Data: map[string]any{
			"served":      k.board.Served,
			"total_score": k.board.TotalScore,
			"total_sum":   k.board.TotalSum,
		},
	})
}

func (k *Kitchen) setButton(id int, b Button) {
	if k.buttons[id] == b {
		return
	}
	k.buttons[id] = b
	k.publish(stage.Event{Kind: stage.EventChobinButton, Chobin: stage.Ref(id), Text: b.String()})
}

func (k *Kitchen) onBubble(g *guest.Guest) {
	b := g.Bubble()
	k.publish(stage.Event{
		Kind:  stage.EventGuestBubble,
		Guest: stage.Ref(g.ID()),
		Text:  b.Text,
		Data:  map[string]any{"bubble": b.Kind.String()},
	})
}

func (k *Kitchen) onCookingFinished(g *guest.Guest) {
	k.log.Debugf("guest %d cooking finished after %s", g.ID(), g.CookingTime())
}

func (k *Kitchen) onGuestSpawned(g *guest.Guest) {
	k.recorder.GuestSpawned()
	k.publish(stage.Event{
		Kind:  stage.EventGuestSpawned,
		Guest: stage.Ref(g.ID()),
		Data:  map[string]any{"variant": g.Variant()},
	})
}

func (k *Kitchen) onGuestReady(g *guest.Guest) {
	k.publish(stage.Event{Kind: stage.EventGuestReady, Guest: stage.Ref(g.ID()), Text: g.OrderText()})
	k.reconcileOrders()
	k.judgeNeedToCook()
}

func (k *Kitchen) onGuestLeft(g *guest.Guest) {
	k.publish(stage.Event{
		Kind:  stage.EventGuestLeft,
		Guest: stage.Ref(g.ID()),
		Data:  map[string]any{"waited_seconds": g.WaitingTime().Seconds()},
	})
}

func (k *Kitchen) onAllExited() {
	k.finished = true
	k.queue.Stop()
	k.log.Infof("all guests served: cook %d, score %d, result %d", k.board.Served, k.board.TotalScore, k.board.TotalSum)
	k.publish(stage.Event{
		Kind:  stage.EventSummary,
		Score: stage.Ref(k.board.TotalSum),
		Data: map[string]any{
			"served":      k.board.Served,
			"total_score": k.board.TotalScore,
			"total_sum":   k.board.TotalSum,
			"discarded":   k.discarded,
			"aborted":     k.aborted,
		},
	})
	if err := k.ledger.FinishSession(k.id, k.board); err != nil {
		k.log.Warnf("ledger: finish session: %v", err)
	}
}

func (k *Kitchen) onChobinStatus(c *chobin.Chobin, from chobin.Status) {
	k.publish(stage.Event{
		Kind:   stage.EventChobinState,
		Chobin: stage.Ref(c.ID()),
		Text:   c.Status().String(),
		Data:   map[string]any{"from": from.String(), "step": c.CurrentStep()},
	})
}

// buildDish turns c's selections into a dish, ingredients in step order.
func (k *Kitchen) buildDish(c *chobin.Chobin, cook time.Duration) (dish.Dish, []string) {
	sel := c.Selections()
	names := make([]string, 0, len(sel))
	actions := make([]string, 0, len(sel))
	for _, s := range sel {
		names = append(names, k.cfg.Materials[s.Material].Name)
		actions = append(actions, k.cfg.Actions[s.Action].Name)
	}
	return dish.New(len(sel), cook, names...), actions
}
