package kitchen

import (
	"math/rand"
	"time"

	"cocan/internal/dish"
	"cocan/internal/logx"
	"cocan/internal/stage"
)

// Option configures a Kitchen.
type Option func(*Kitchen)

// WithPresenter sends facing and animation cues to p.
func WithPresenter(p stage.Presenter) Option {
	return func(k *Kitchen) {
		if p != nil {
			k.presenter = p
		}
	}
}

// WithSink publishes events to s.
func WithSink(s stage.Sink) Option {
	return func(k *Kitchen) {
		if s != nil {
			k.sink = s
		}
	}
}

// WithRecorder reports metrics to r.
func WithRecorder(r Recorder) Option {
	return func(k *Kitchen) {
		if r != nil {
			k.recorder = r
		}
	}
}

// WithLedger persists sessions and serves to l.
func WithLedger(l Ledger) Option {
	return func(k *Kitchen) {
		if l != nil {
			k.ledger = l
		}
	}
}

// WithRand overrides the random source seeded from Config.Seed.
func WithRand(r *rand.Rand) Option {
	return func(k *Kitchen) { k.rng = r }
}

// WithLogger logs through l.
func WithLogger(l *logx.Logger) Option {
	return func(k *Kitchen) {
		if l != nil {
			k.log = l
		}
	}
}

// WithSessionID replaces the generated session id.
func WithSessionID(id string) Option {
	return func(k *Kitchen) {
		if id != "" {
			k.id = id
		}
	}
}

// Gauges is the state of the floor after a tick.
type Gauges struct {
	OrderLine  int
	ServeLine  int
	Present    int
	BusyChobin int
}

// Served describes one dish handed to a guest.
type Served struct {
	Chobin   int
	Guest    int
	Score    int
	Reaction dish.Reaction
	CookTime time.Duration
	WaitTime time.Duration
}

// Recorder receives metrics from the kitchen.
type Recorder interface {
	GuestSpawned()
	OrderAccepted()
	DishServed(s Served)
	DishDiscarded()
	CommandAborted()
	Gauges(g Gauges)
}

type nopRecorder struct{}

func (nopRecorder) GuestSpawned()     {}
func (nopRecorder) OrderAccepted()    {}
func (nopRecorder) DishServed(Served) {}
func (nopRecorder) DishDiscarded()    {}
func (nopRecorder) CommandAborted()   {}
func (nopRecorder) Gauges(Gauges)     {}

// SessionInfo describes a game when it starts.
type SessionInfo struct {
	ID       string
	Scenario string
	Guests   int
	Chobins  int
	Seed     int64
}

// ServeRecord is one row of the serve log.
type ServeRecord struct {
	Session     string
	Chobin      int
	Guest       int
	Variant     int
	Ingredients []string
	Actions     []string
	Steps       int
	CookTime    time.Duration
	WaitTime    time.Duration
	Breakdown   dish.Breakdown
	Reaction    dish.Reaction
	At          time.Duration
}

// Ledger keeps a history of games. Failures are logged by the kitchen and
// never stop the game.
type Ledger interface {
	BeginSession(info SessionInfo) error
	RecordServe(rec ServeRecord) error
	FinishSession(id string, board Scoreboard) error
}

type nopLedger struct{}

func (nopLedger) BeginSession(SessionInfo) error         { return nil }
func (nopLedger) RecordServe(ServeRecord) error          { return nil }
func (nopLedger) FinishSession(string, Scoreboard) error { return nil }
