package simclock

import (
	"sort"
	"time"
)

// Scheduler holds keyed one-shot timers against a Clock. Timers are checked
// once per tick by Process; nothing fires between ticks.
type Scheduler struct {
	clock  *Clock
	seq    uint64
	timers map[string]timer
	fire   []timer
}

type timer struct {
	key      string
	deadline time.Duration
	seq      uint64
	fn       func()
}

// NewScheduler creates a scheduler reading deadlines from clock.
func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[string]timer),
	}
}

// After arms a one-shot timer under key that fires d after the current
// simulated time. Any timer already registered under key is replaced.
func (s *Scheduler) After(key string, d time.Duration, fn func()) {
	s.seq++
	s.timers[key] = timer{
		key:      key,
		deadline: s.clock.Now() + d,
		seq:      s.seq,
		fn:       fn,
	}
}

// Cancel removes the timer under key, reporting whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	if _, ok := s.timers[key]; !ok {
		return false
	}
	delete(s.timers, key)
	return true
}

// Pending reports whether a timer is armed under key.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.timers[key]
	return ok
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int { return len(s.timers) }

// Process fires every timer whose deadline has passed. Expired timers are
// removed first and their callbacks run afterwards in deadline order, so a
// callback may safely arm or cancel timers (including its own key).
func (s *Scheduler) Process() int {
	now := s.clock.Now()
	s.fire = s.fire[:0]
	for key, t := range s.timers {
		if t.deadline <= now {
			s.fire = append(s.fire, t)
			delete(s.timers, key)
		}
	}
	sort.Slice(s.fire, func(i, j int) bool {
		if s.fire[i].deadline != s.fire[j].deadline {
			return s.fire[i].deadline < s.fire[j].deadline
		}
		return s.fire[i].seq < s.fire[j].seq
	})
	fired := len(s.fire)
	for _, t := range s.fire {
		t.fn()
	}
	return fired
}
