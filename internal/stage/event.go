package stage

import "time"

// EventKind classifies simulation events.
type EventKind string

const (
	EventGuestSpawned    EventKind = "guest_spawned"
	EventGuestReady      EventKind = "guest_ready"
	EventGuestBubble     EventKind = "guest_bubble"
	EventOrderAccepted   EventKind = "order_accepted"
	EventDishServed      EventKind = "dish_served"
	EventDishDiscarded   EventKind = "dish_discarded"
	EventGuestLeft       EventKind = "guest_left"
	EventChobinState     EventKind = "chobin_state"
	EventChobinButton    EventKind = "chobin_button"
	EventCommandPanel    EventKind = "command_panel"
	EventScoreboard      EventKind = "scoreboard"
	EventSummary         EventKind = "summary"
	EventCommandRejected EventKind = "command_rejected"
)

// Event is one thing that happened in the kitchen. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind   EventKind      `json:"kind"`
	Tick   uint64         `json:"tick"`
	At     time.Duration  `json:"at"`
	Chobin *int           `json:"chobin,omitempty"`
	Guest  *int           `json:"guest,omitempty"`
	Score  *int           `json:"score,omitempty"`
	Text   string         `json:"text,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Ref returns a pointer to v for the optional Event fields.
func Ref(v int) *int { return &v }

// Sink receives events. Publish is called from the simulation goroutine and
// must not block.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

// Fanout publishes to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(e Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(e)
		}
	}
}

// Discard drops events.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every published event; handy in tests.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(e Event) { r.Events = append(r.Events, e) }

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
