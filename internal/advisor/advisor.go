// Package advisor proposes command selections for a chobin: which material
// and action to use at every step so the dish suits the guest it will feed.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tmc/langchaingo/llms"

	"cocan/internal/dish"
	"cocan/internal/kitchen"
	"cocan/internal/logx"
)

// ErrEmptyMenu is returned when a request has nothing to choose from.
var ErrEmptyMenu = errors.New("menu has no materials or actions")

// Request describes the dish to plan.
type Request struct {
	// Guest is the arrival id of the recipient, or -1 when nobody is known.
	Guest       int
	OrderText   string
	Preferences dish.Preferences
	Steps       int
	Materials   []string
	Actions     []string
}

// Step is one planned selection.
type Step struct {
	Material     int    `json:"material"`
	Action       int    `json:"action"`
	MaterialName string `json:"material_name"`
	ActionName   string `json:"action_name"`
}

// Plan is a full command for one chobin.
type Plan struct {
	Guest  int    `json:"guest"`
	Steps  []Step `json:"steps"`
	Source string `json:"source"`
	// Expected is the score if the dish is served within the fast window.
	Expected int    `json:"expected"`
	Reason   string `json:"reason,omitempty"`
}

const (
	SourceHeuristic = "heuristic"
	SourceModel     = "model"
)

// Advisor builds plans with a heuristic, or with a language model when one
// is configured.
type Advisor struct {
	model   llms.Model
	log     *logx.Logger
	timeout time.Duration
}

// New creates an advisor. A nil model means heuristic only.
func New(model llms.Model, log *logx.Logger, timeout time.Duration) *Advisor {
	if log == nil {
		log = logx.Discard()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Advisor{model: model, log: log, timeout: timeout}
}

// UsesModel reports whether a language model is configured.
func (a *Advisor) UsesModel() bool { return a.model != nil }

// Suggest plans a command for req. Model failures fall back to the
// heuristic; only an unusable request is an error.
func (a *Advisor) Suggest(ctx context.Context, req Request) (Plan, error) {
	if len(req.Materials) == 0 || len(req.Actions) == 0 {
		return Plan{}, ErrEmptyMenu
	}
	if req.Steps < 1 {
		return Plan{}, fmt.Errorf("plan needs at least one step, got %d", req.Steps)
	}
	if a.model == nil {
		return Heuristic(req), nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	plan, err := a.ask(ctx, req)
	if err != nil {
		a.log.Warnf("model plan for guest %d failed, using heuristic: %v", req.Guest, err)
		return Heuristic(req), nil
	}
	return plan, nil
}

// Heuristic picks materials that are liked or emotional and not hated, and
// cycles through distinct actions. An emotional material is worth more than
// a liked one, so it goes first when a single step has to carry both.
func Heuristic(req Request) Plan {
	p := req.Preferences
	var picks []int
	if both := firstWhere(req.Materials, p, intersect(p.Liked, p.Emotion)); both >= 0 {
		picks = []int{both}
	} else {
		for _, i := range []int{firstWhere(req.Materials, p, p.Emotion), firstWhere(req.Materials, p, p.Liked)} {
			if i >= 0 {
				picks = append(picks, i)
			}
		}
	}
	if len(picks) == 0 {
		// Nothing helps; at least avoid a hated ingredient.
		picks = []int{max(firstWhere(req.Materials, p, nil), 0)}
	}

	steps := make([]Step, req.Steps)
	for i := range steps {
		m := picks[min(i, len(picks)-1)]
		a := i % len(req.Actions)
		steps[i] = Step{
			Material:     m,
			Action:       a,
			MaterialName: req.Materials[m],
			ActionName:   req.Actions[a],
		}
	}
	return Plan{
		Guest:    req.Guest,
		Steps:    steps,
		Source:   SourceHeuristic,
		Expected: expected(req, steps),
	}
}

func intersect(a, b dish.Set) dish.Set {
	out := dish.Set{}
	for n := range a {
		if b.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// firstWhere returns the first material not hated and, when in is non-nil,
// contained in it.
func firstWhere(materials []string, p dish.Preferences, in dish.Set) int {
	for i, m := range materials {
		if p.Hated.Has(m) {
			continue
		}
		if in == nil || in.Has(m) {
			return i
		}
	}
	return -1
}

func expected(req Request, steps []Step) int {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.MaterialName
	}
	return dish.Score(dish.New(len(steps), 0, names...), req.Preferences)
}

// RequestFor describes the dish a command submitted now would become: the
// next recipient's tastes against the kitchen's menu.
func RequestFor(k *kitchen.Kitchen) Request {
	req := Request{Guest: -1, Steps: k.CommandCount()}
	for _, m := range k.Materials() {
		req.Materials = append(req.Materials, m.Name)
	}
	for _, a := range k.Actions() {
		req.Actions = append(req.Actions, a.Name)
	}
	if g, ok := k.NextRecipient(); ok {
		req.Guest = g.ID()
		req.OrderText = g.OrderText()
		req.Preferences = g.Preferences()
	}
	return req
}

// Apply writes plan into chobin id's selections.
func Apply(k *kitchen.Kitchen, id int, plan Plan) error {
	for i, s := range plan.Steps {
		if err := k.SetMaterial(id, i, s.Material); err != nil {
			return err
		}
		if err := k.SetAction(id, i, s.Action); err != nil {
			return err
		}
	}
	return nil
}

func sorted(s dish.Set) []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
