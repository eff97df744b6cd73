// Package scenario holds named presets that reshape a game's pacing and
// staffing on top of the loaded configuration.
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"cocan/internal/config"
	"cocan/internal/geometry"
)

// ErrUnknown is returned by Apply for an id that is not registered.
var ErrUnknown = errors.New("unknown scenario")

// Scenario is one preset.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`

	apply func(*config.Config)
}

var registry = map[string]*Scenario{
	"standard": {
		ID:          "standard",
		Name:        "Standard Service",
		Type:        "operational",
		Description: "The configured game, unchanged.",
		apply:       func(*config.Config) {},
	},
	"busy_night": {
		ID:          "busy_night",
		Name:        "Busy Night",
		Type:        "operational",
		Description: "Twice the guests arriving twice as fast, with a longer line.",
		apply: func(c *config.Config) {
			c.Guests.Total *= 2
			c.Guests.MaxConcurrent += 2
			c.Guests.SpawnIntervalMin /= 2
			c.Guests.SpawnIntervalMax /= 2
		},
	},
	"slow_business": {
		ID:          "slow_business",
		Name:        "Slow Business",
		Type:        "operational",
		Description: "Half the guests, spread out over the evening.",
		apply: func(c *config.Config) {
			c.Guests.Total = max(c.Guests.Total/2, 1)
			c.Guests.SpawnIntervalMin *= 2
			c.Guests.SpawnIntervalMax *= 2
		},
	},
	"quality_control": {
		ID:          "quality_control",
		Name:        "Quality Control",
		Type:        "quality",
		Description: "Slow stations and a small line: every dish has to count.",
		apply: func(c *config.Config) {
			c.Guests.MaxConcurrent = min(c.Guests.MaxConcurrent, 2)
			c.Chobins.PerformingTime = c.Chobins.PerformingTime * 3 / 2
			c.Guests.ReactionWindow = max(c.Guests.ReactionWindow, 3*time.Second)
		},
	},
	"short_staffed": {
		ID:          "short_staffed",
		Name:        "Short Staffed",
		Type:        "resource",
		Description: "A single chobin covers the whole kitchen.",
		apply: func(c *config.Config) {
			if len(c.Chobins.WaitingSpots) > 1 {
				c.Chobins.WaitingSpots = c.Chobins.WaitingSpots[:1]
			}
		},
	},
	"high_labor": {
		ID:          "high_labor",
		Name:        "High Labor Cost",
		Type:        "resource",
		Description: "Five chobins for a normal evening; keep them busy.",
		apply: func(c *config.Config) {
			spots := append([]geometry.Vec3(nil), c.Chobins.WaitingSpots...)
			if len(spots) == 0 {
				return
			}
			last := spots[len(spots)-1]
			for i := 1; len(spots) < 5; i++ {
				spots = append(spots, last.Add(geometry.V(float64(i)*1.5, 0, 0)))
			}
			c.Chobins.WaitingSpots = spots
		},
	},
}

// Has reports whether id is registered.
func Has(id string) bool {
	_, ok := registry[id]
	return ok
}

// Get returns the scenario with id.
func Get(id string) (*Scenario, bool) {
	s, ok := registry[id]
	return s, ok
}

// List returns every scenario sorted by id.
func List() []*Scenario {
	out := make([]*Scenario, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Apply reshapes cfg for scenario id and records it as the active scenario.
// An empty id means standard.
func Apply(cfg *config.Config, id string) error {
	if id == "" {
		id = "standard"
	}
	s, ok := registry[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknown, id)
	}
	s.apply(cfg)
	cfg.Scenario = s.ID
	return nil
}
