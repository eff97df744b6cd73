package kitchen

import (
	"cocan/internal/chobin"
	"cocan/internal/geometry"
	"cocan/internal/guest"
	"cocan/internal/queue"
)

// GuestView is a guest as seen from outside the simulation.
type GuestView struct {
	ID          int           `json:"id"`
	Variant     int           `json:"variant"`
	Status      guest.Status  `json:"status"`
	Ready       bool          `json:"ready"`
	Position    geometry.Vec3 `json:"position"`
	Bubble      guest.Bubble  `json:"bubble"`
	CookSeconds float64       `json:"cook_seconds"`
	WaitSeconds float64       `json:"wait_seconds"`
}

// ChobinView is a chobin as seen from outside the simulation.
type ChobinView struct {
	ID         int                `json:"id"`
	Status     chobin.Status      `json:"status"`
	Button     Button             `json:"button"`
	Position   geometry.Vec3      `json:"position"`
	Step       int                `json:"step"`
	Progress   float64            `json:"progress"`
	Selections []chobin.Selection `json:"selections"`
}

// Snapshot is a serialisable copy of the whole game.
type Snapshot struct {
	Session    string         `json:"session"`
	Tick       uint64         `json:"tick"`
	Elapsed    float64        `json:"elapsed_seconds"`
	Started    bool           `json:"started"`
	Finished   bool           `json:"finished"`
	Counters   queue.Counters `json:"counters"`
	InProgress int            `json:"in_progress"`
	NeedToCook bool           `json:"need_to_cook"`
	OpenPanel  int            `json:"open_panel"`
	Scoreboard Scoreboard     `json:"scoreboard"`
	Discarded  int            `json:"discarded"`
	Aborted    int            `json:"aborted"`
	Guests     []GuestView    `json:"guests"`
	Chobins    []ChobinView   `json:"chobins"`
}

// Snapshot copies the current state.
func (k *Kitchen) Snapshot() Snapshot {
	s := Snapshot{
		Session:    k.id,
		Tick:       k.clock.Tick(),
		Elapsed:    k.clock.Now().Seconds(),
		Started:    k.started,
		Finished:   k.finished,
		Counters:   k.queue.Counters(),
		InProgress: k.crew.InProgress(),
		NeedToCook: k.NeedToCook(),
		OpenPanel:  k.panel,
		Scoreboard: k.board,
		Discarded:  k.discarded,
		Aborted:    k.aborted,
		Guests:     make([]GuestView, 0, k.queue.Present()),
		Chobins:    make([]ChobinView, 0, len(k.buttons)),
	}
	for _, g := range k.queue.Guests() {
		s.Guests = append(s.Guests, GuestView{
			ID:          g.ID(),
			Variant:     g.Variant(),
			Status:      g.Status(),
			Ready:       g.Ready(),
			Position:    g.Position(),
			Bubble:      g.Bubble(),
			CookSeconds: g.CookingTime().Seconds(),
			WaitSeconds: g.WaitingTime().Seconds(),
		})
	}
	for _, c := range k.crew.All() {
		s.Chobins = append(s.Chobins, ChobinView{
			ID:         c.ID(),
			Status:     c.Status(),
			Button:     k.buttons[c.ID()],
			Position:   c.Position(),
			Step:       c.CurrentStep(),
			Progress:   c.PerformingProgress(),
			Selections: c.Selections(),
		})
	}
	return s
}
