package kitchen

import (
	"errors"
	"fmt"
	"time"

	"cocan/internal/chobin"
	"cocan/internal/queue"
)

// Material is one entry of the material master list.
type Material struct {
	Name  string `json:"name"`
	Asset string `json:"asset,omitempty"`
}

// Action is one entry of the action master list. Station is where a chobin
// performs it.
type Action struct {
	Name    string        `json:"name"`
	Asset   string        `json:"asset,omitempty"`
	Station chobin.Target `json:"station"`
}

// Config is everything a kitchen needs at start. It is static for the
// lifetime of a game.
type Config struct {
	Scenario       string
	Seed           int64
	TimeScale      float64
	OrderTexts     []string
	ReactionWindow time.Duration

	Queue   queue.Config
	Chobins chobin.Config

	Materials []Material
	Actions   []Action
}

// Validate reports every configuration problem, joined. A kitchen is never
// started with a partial configuration.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if len(c.Materials) == 0 {
		add("material list is empty")
	}
	for i, m := range c.Materials {
		if m.Name == "" {
			add("material %d has no name", i)
		}
	}
	if len(c.Actions) == 0 {
		add("action list is empty")
	}
	for i, a := range c.Actions {
		if a.Name == "" {
			add("action %d has no name", i)
		}
	}
	if c.Chobins.CommandCount < 1 {
		add("command count must be at least 1, got %d", c.Chobins.CommandCount)
	}
	if len(c.Chobins.WaitingSpots) == 0 {
		add("no chobin waiting spots")
	}
	if c.Chobins.Speed <= 0 {
		add("chobin speed must be positive")
	}
	if c.Chobins.ServingRadius < 0 || c.Chobins.WaitingRadius < 0 || c.Chobins.ArrivalEpsilon < 0 {
		add("chobin radii must not be negative")
	}

	q := c.Queue
	if q.Total < 1 {
		add("total guests must be positive, got %d", q.Total)
	}
	if q.MaxConcurrent < 1 {
		add("max concurrent guests must be positive, got %d", q.MaxConcurrent)
	}
	if q.Speed <= 0 {
		add("guest speed must be positive")
	}
	if q.SpawnIntervalMin < 0 || q.SpawnIntervalMax < q.SpawnIntervalMin {
		add("invalid spawn interval [%s, %s]", q.SpawnIntervalMin, q.SpawnIntervalMax)
	}
	if q.OrderingSpot.Equal(q.WaitingServeSpot) {
		add("ordering spot and serve spot coincide at %s", q.OrderingSpot)
	}
	if q.ExitSpot.Equal(q.OrderingSpot) || q.ExitSpot.Equal(q.WaitingServeSpot) {
		add("exit spot %s overlaps a queue spot", q.ExitSpot)
	}
	if q.OrderOffset.IsZero() || q.ServeOffset.IsZero() {
		add("line offsets must not be zero")
	}
	return errors.Join(errs...)
}

func (c Config) chobinConfig() chobin.Config {
	cc := c.Chobins
	cc.Materials = len(c.Materials)
	cc.Actions = len(c.Actions)
	return cc
}
