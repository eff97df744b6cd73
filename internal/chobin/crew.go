package chobin

import (
	"fmt"
	"time"

	"cocan/internal/stage"
)

// Crew is every chobin of a kitchen plus the count of commands in progress,
// that is dispatched but not yet served or aborted.
type Crew struct {
	chobins    []*Chobin
	inProgress int
}

// NewCrew creates one chobin per configured waiting spot.
func NewCrew(cfg Config, presenter stage.Presenter, hooks Hooks) *Crew {
	cr := &Crew{chobins: make([]*Chobin, len(cfg.WaitingSpots))}
	for i, home := range cfg.WaitingSpots {
		cr.chobins[i] = New(i, home, cfg, presenter, hooks)
	}
	return cr
}

// Get returns the chobin with id.
func (cr *Crew) Get(id int) (*Chobin, error) {
	if id < 0 || id >= len(cr.chobins) {
		return nil, fmt.Errorf("chobin %d of %d: %w", id, len(cr.chobins), ErrUnknown)
	}
	return cr.chobins[id], nil
}

// All returns the chobins in id order.
func (cr *Crew) All() []*Chobin { return cr.chobins }

func (cr *Crew) Len() int { return len(cr.chobins) }

// Idle lists the chobins waiting for a command.
func (cr *Crew) Idle() []*Chobin {
	var out []*Chobin
	for _, c := range cr.chobins {
		if !c.IsCooking() {
			out = append(out, c)
		}
	}
	return out
}

// Busy counts the chobins that are not idle.
func (cr *Crew) Busy() int { return len(cr.chobins) - len(cr.Idle()) }

// Update advances every chobin in id order.
func (cr *Crew) Update(dt time.Duration) {
	for _, c := range cr.chobins {
		c.Update(dt)
	}
}

// InProgress is the number of dispatched commands not yet served or aborted.
func (cr *Crew) InProgress() int { return cr.inProgress }

func (cr *Crew) Increment() { cr.inProgress++ }

// Decrement lowers the in-progress count, never below zero. It reports
// whether the count changed.
func (cr *Crew) Decrement() bool {
	if cr.inProgress == 0 {
		return false
	}
	cr.inProgress--
	return true
}
