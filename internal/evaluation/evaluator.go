package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocan/internal/advisor"
	"cocan/internal/config"
	"cocan/internal/kitchen"
	"cocan/internal/logx"
	"cocan/internal/scenario"
	"cocan/internal/stage"
)

// Evaluator plays complete headless games with the advisor and reports how
// well it did on each scenario.
type Evaluator struct {
	base     *config.Config
	advisor  *advisor.Advisor
	model    string
	log      *logx.Logger
	step     time.Duration
	maxTicks int
}

// EvaluationResult is the outcome of one game.
type EvaluationResult struct {
	Model    string                 `json:"model"`
	Scenario string                 `json:"scenario"`
	Session  string                 `json:"session"`
	Seed     int64                  `json:"seed"`
	Finished bool                   `json:"finished"`
	Metrics  map[string]interface{} `json:"metrics"`
	Events   []EventLog             `json:"events,omitempty"`
}

// EventLog is one scored or wasted dish, stamped with simulated time.
type EventLog struct {
	At   time.Duration          `json:"at"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// NewEvaluator creates an evaluator. base is copied per game and never
// modified; model labels the results.
func NewEvaluator(base *config.Config, adv *advisor.Advisor, model string, log *logx.Logger) *Evaluator {
	if log == nil {
		log = logx.Discard()
	}
	return &Evaluator{
		base:     base,
		advisor:  adv,
		model:    model,
		log:      log,
		step:     base.Simulation.TickInterval,
		maxTicks: base.Simulation.MaxTicks,
	}
}

// SetLimits overrides the tick length and tick cap taken from the base
// configuration. Zero values keep the current setting.
func (e *Evaluator) SetLimits(step time.Duration, maxTicks int) {
	if step > 0 {
		e.step = step
	}
	if maxTicks > 0 {
		e.maxTicks = maxTicks
	}
}

// HasScenario checks if a scenario exists
func (e *Evaluator) HasScenario(id string) bool {
	return scenario.Has(id)
}

// GetScenarios returns all available scenarios
func (e *Evaluator) GetScenarios() []*scenario.Scenario {
	return scenario.List()
}

// recorder keeps the events an evaluation reports on.
type recorder struct {
	events    []EventLog
	reactions map[string]int
	cookTotal float64
}

func (r *recorder) Publish(ev stage.Event) {
	switch ev.Kind {
	case stage.EventDishServed:
		r.reactions[ev.Text]++
		data := map[string]interface{}{"reaction": ev.Text}
		if ev.Guest != nil {
			data["guest"] = *ev.Guest
		}
		if ev.Chobin != nil {
			data["chobin"] = *ev.Chobin
		}
		if ev.Score != nil {
			data["score"] = *ev.Score
		}
		if cook, ok := ev.Data["cook_seconds"].(float64); ok {
			data["cook_seconds"] = cook
			r.cookTotal += cook
		}
		r.events = append(r.events, EventLog{At: ev.At, Type: string(ev.Kind), Data: data})
	case stage.EventDishDiscarded, stage.EventCommandRejected:
		data := map[string]interface{}{}
		if ev.Chobin != nil {
			data["chobin"] = *ev.Chobin
		}
		if ev.Text != "" {
			data["reason"] = ev.Text
		}
		r.events = append(r.events, EventLog{At: ev.At, Type: string(ev.Kind), Data: data})
	}
}

// EvaluateModel plays one game of scenarioID. A game cut short by the tick
// limit still yields a result with Finished false.
func (e *Evaluator) EvaluateModel(ctx context.Context, scenarioID string) (*EvaluationResult, error) {
	if !e.HasScenario(scenarioID) {
		return nil, fmt.Errorf("%w: %q", scenario.ErrUnknown, scenarioID)
	}
	cfg := e.base.Clone()
	if err := scenario.Apply(cfg, scenarioID); err != nil {
		return nil, err
	}
	if err := cfg.Validate(e.log.Named("config")); err != nil {
		return nil, err
	}

	rec := &recorder{reactions: map[string]int{}}
	k, err := kitchen.New(cfg.Kitchen(),
		kitchen.WithSink(rec),
		kitchen.WithLogger(e.log.Named("kitchen")),
	)
	if err != nil {
		return nil, err
	}

	e.log.Infof("evaluating %s on %s (seed %d)", e.model, scenarioID, cfg.Simulation.Seed)
	pilot := advisor.NewPilot(e.advisor, e.log.Named("pilot"))
	board, err := pilot.Play(ctx, k, e.step, e.maxTicks)
	if err != nil && !errors.Is(err, advisor.ErrTickLimit) {
		return nil, err
	}

	counters := k.Counters()
	metrics := map[string]interface{}{
		"served":      board.Served,
		"total_score": board.TotalScore,
		"total_sum":   board.TotalSum,
		"discarded":   k.Discarded(),
		"submitted":   pilot.Submitted(),
		"guests":      counters.Total,
		"exits":       counters.Exits,
		"sim_seconds": k.Clock().Now().Seconds(),
		"ticks":       k.Clock().Tick(),
	}
	if board.Served > 0 {
		metrics["mean_score"] = float64(board.TotalScore) / float64(board.Served)
		metrics["mean_cook_seconds"] = rec.cookTotal / float64(board.Served)
	}
	for r, n := range rec.reactions {
		metrics["reaction_"+r] = n
	}

	return &EvaluationResult{
		Model:    e.model,
		Scenario: scenarioID,
		Session:  k.ID(),
		Seed:     cfg.Simulation.Seed,
		Finished: k.Finished(),
		Metrics:  metrics,
		Events:   rec.events,
	}, nil
}

// EvaluateAll runs every scenario in ids in the given order, or all
// registered ones in id order when ids is empty.
func (e *Evaluator) EvaluateAll(ctx context.Context, ids ...string) ([]*EvaluationResult, error) {
	if len(ids) == 0 {
		for _, s := range scenario.List() {
			ids = append(ids, s.ID)
		}
	}
	results := make([]*EvaluationResult, 0, len(ids))
	for _, id := range ids {
		res, err := e.EvaluateModel(ctx, id)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", id, err)
		}
		results = append(results, res)
	}
	return results, nil
}
