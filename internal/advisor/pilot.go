package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocan/internal/kitchen"
	"cocan/internal/logx"
)

// ErrTickLimit is returned by Play when the game did not finish in time.
var ErrTickLimit = errors.New("tick limit reached before every guest left")

// Pilot plays the kitchen without a human: whenever a chobin shows the
// waiting button it plans a command for the next recipient and submits it.
type Pilot struct {
	advisor   *Advisor
	log       *logx.Logger
	submitted int
}

func NewPilot(a *Advisor, log *logx.Logger) *Pilot {
	if log == nil {
		log = logx.Discard()
	}
	return &Pilot{advisor: a, log: log}
}

// Submitted is how many commands the pilot has dispatched.
func (p *Pilot) Submitted() int { return p.submitted }

// Step dispatches every chobin that is asking for a command and returns how
// many it sent.
func (p *Pilot) Step(ctx context.Context, k *kitchen.Kitchen) (int, error) {
	sent := 0
	for id := range k.Buttons() {
		// Each submit re-judges the buttons, so read them fresh.
		if k.Buttons()[id] != kitchen.ButtonWaiting {
			continue
		}
		plan, err := p.advisor.Suggest(ctx, RequestFor(k))
		if err != nil {
			return sent, fmt.Errorf("planning for chobin %d: %w", id, err)
		}
		if err := Apply(k, id, plan); err != nil {
			return sent, fmt.Errorf("applying plan to chobin %d: %w", id, err)
		}
		if err := k.SubmitCommand(id); err != nil {
			return sent, fmt.Errorf("submitting chobin %d: %w", id, err)
		}
		p.log.Debugf("chobin %d sent for guest %d (%s plan, expects %d)", id, plan.Guest, plan.Source, plan.Expected)
		p.submitted++
		sent++
	}
	return sent, nil
}

// Play starts k and drives it with a fixed step until every guest has left
// or maxTicks ticks have run (0 means no limit).
func (p *Pilot) Play(ctx context.Context, k *kitchen.Kitchen, dt time.Duration, maxTicks int) (kitchen.Scoreboard, error) {
	if !k.Started() {
		k.Start()
	}
	for ticks := 0; !k.Finished(); ticks++ {
		if maxTicks > 0 && ticks >= maxTicks {
			return k.Scoreboard(), ErrTickLimit
		}
		if err := ctx.Err(); err != nil {
			return k.Scoreboard(), err
		}
		if _, err := p.Step(ctx, k); err != nil {
			return k.Scoreboard(), err
		}
		k.Tick(dt)
	}
	return k.Scoreboard(), nil
}
