package guest

import (
	"errors"
	"fmt"
)

// Status is where a guest is in its visit.
type Status int

const (
	Entering Status = iota
	WaitingOrder
	Ordering
	WaitingDish
	GotDish
)

var statusNames = [...]string{
	Entering:     "entering",
	WaitingOrder: "waiting_order",
	Ordering:     "ordering",
	WaitingDish:  "waiting_dish",
	GotDish:      "got_dish",
}

func (s Status) String() string {
	if s < Entering || s > GotDish {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText renders the status name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown guest status %q", text)
}

// ErrInvalidTransition is returned when a status change would move a guest
// backwards or skip a step it may not skip.
var ErrInvalidTransition = errors.New("invalid guest status transition")

// next lists the statuses reachable from each status. The only skip allowed
// is straight from Entering to Ordering, for a guest who is already first in
// line when it reaches the counter.
var next = map[Status][]Status{
	Entering:     {WaitingOrder, Ordering},
	WaitingOrder: {Ordering},
	Ordering:     {WaitingDish},
	WaitingDish:  {GotDish},
}

// CanAdvance reports whether from → to is a legal transition.
func CanAdvance(from, to Status) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
