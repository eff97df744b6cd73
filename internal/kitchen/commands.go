package kitchen

import (
	"errors"
	"fmt"

	"cocan/internal/chobin"
	"cocan/internal/stage"
)

// PanelStep is one row of the command panel.
type PanelStep struct {
	Step     int    `json:"step"`
	Material int    `json:"material"`
	Action   int    `json:"action"`
	Name     string `json:"material_name"`
	Verb     string `json:"action_name"`
}

// Panel is the command UI for one chobin.
type Panel struct {
	Chobin int         `json:"chobin"`
	Status string      `json:"status"`
	Button string      `json:"button"`
	Steps  []PanelStep `json:"steps"`
}

func (k *Kitchen) panelFor(c *chobin.Chobin) Panel {
	p := Panel{Chobin: c.ID(), Status: c.Status().String(), Button: k.buttons[c.ID()].String()}
	for i, s := range c.Selections() {
		p.Steps = append(p.Steps, PanelStep{
			Step:     i,
			Material: s.Material,
			Action:   s.Action,
			Name:     k.cfg.Materials[s.Material].Name,
			Verb:     k.cfg.Actions[s.Action].Name,
		})
	}
	return p
}

// ShowCommandUI opens the command panel for a chobin and returns its current
// selections.
func (k *Kitchen) ShowCommandUI(id int) (Panel, error) {
	c, err := k.Chobin(id)
	if err != nil {
		k.log.Warnf("show command: %v", err)
		return Panel{}, err
	}
	k.panel = id
	p := k.panelFor(c)
	k.publish(stage.Event{Kind: stage.EventCommandPanel, Chobin: stage.Ref(id), Data: map[string]any{"panel": p}})
	return p, nil
}

// Panel returns the panel of a chobin without opening it.
func (k *Kitchen) Panel(id int) (Panel, error) {
	c, err := k.Chobin(id)
	if err != nil {
		return Panel{}, err
	}
	return k.panelFor(c), nil
}

// OpenPanel is the chobin whose command UI is open, or -1.
func (k *Kitchen) OpenPanel() int { return k.panel }

// SubmitCommand dispatches a chobin with its current selections. The
// stations come from the selected actions.
func (k *Kitchen) SubmitCommand(id int) error {
	if !k.started {
		return ErrNotStarted
	}
	c, err := k.Chobin(id)
	if err != nil {
		return k.reject(id, "submit", err)
	}
	if c.IsCooking() {
		return k.reject(id, "submit", fmt.Errorf("%w: chobin %d is %s", ErrNotIdle, id, c.Status()))
	}
	sel := c.Selections()
	targets := make([]chobin.Target, len(sel))
	for i, s := range sel {
		targets[i] = k.cfg.Actions[s.Action].Station
	}
	if err := c.Dispatch(targets); err != nil {
		return k.reject(id, "submit", err)
	}
	if k.panel == id {
		k.panel = -1
	}
	k.crew.Increment()
	k.log.Infof("chobin %d dispatched (%d in progress, %d waiting)", id, k.crew.InProgress(), k.queue.WaitingGuestCount())
	k.reconcileOrders()
	k.setButton(id, ButtonPerforming)
	k.judgeNeedToCook()
	return nil
}

// AbortCommand sends a chobin home without serving. Only a command that has
// not been served yet can be aborted.
func (k *Kitchen) AbortCommand(id int) error {
	c, err := k.Chobin(id)
	if err != nil {
		return k.reject(id, "abort", err)
	}
	if !c.ForceAbort() {
		return k.reject(id, "abort", fmt.Errorf("%w: chobin %d is %s", ErrNothingToAbort, id, c.Status()))
	}
	k.crew.Decrement()
	k.aborted++
	k.recorder.CommandAborted()
	k.log.Infof("chobin %d aborted", id)
	k.setButton(id, ButtonHidden)
	k.judgeNeedToCook()
	return nil
}

// SetMaterial selects a material for one step of a chobin's command.
func (k *Kitchen) SetMaterial(id, step, material int) error {
	c, err := k.Chobin(id)
	if err != nil {
		return k.reject(id, "set material", err)
	}
	if err := c.SetMaterial(step, material); err != nil {
		return k.reject(id, "set material", translate(err, ErrMaterialOutOfRange))
	}
	k.publishPanel(c)
	return nil
}

// SetAction selects an action for one step of a chobin's command.
func (k *Kitchen) SetAction(id, step, action int) error {
	c, err := k.Chobin(id)
	if err != nil {
		return k.reject(id, "set action", err)
	}
	if err := c.SetAction(step, action); err != nil {
		return k.reject(id, "set action", translate(err, ErrActionOutOfRange))
	}
	k.publishPanel(c)
	return nil
}

func (k *Kitchen) NextMaterial(id, step int) error     { return k.cycleMaterial(id, step, 1) }
func (k *Kitchen) PreviousMaterial(id, step int) error { return k.cycleMaterial(id, step, -1) }
func (k *Kitchen) NextAction(id, step int) error       { return k.cycleAction(id, step, 1) }
func (k *Kitchen) PreviousAction(id, step int) error   { return k.cycleAction(id, step, -1) }

func (k *Kitchen) cycleMaterial(id, step, delta int) error {
	cur, err := k.selection(id, step)
	if err != nil {
		return k.reject(id, "cycle material", err)
	}
	n := len(k.cfg.Materials)
	return k.SetMaterial(id, step, (cur.Material+delta+n)%n)
}

func (k *Kitchen) cycleAction(id, step, delta int) error {
	cur, err := k.selection(id, step)
	if err != nil {
		return k.reject(id, "cycle action", err)
	}
	n := len(k.cfg.Actions)
	return k.SetAction(id, step, (cur.Action+delta+n)%n)
}

func (k *Kitchen) selection(id, step int) (chobin.Selection, error) {
	c, err := k.Chobin(id)
	if err != nil {
		return chobin.Selection{}, err
	}
	sel := c.Selections()
	if step < 0 || step >= len(sel) {
		return chobin.Selection{}, fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, step, len(sel))
	}
	return sel[step], nil
}

func (k *Kitchen) publishPanel(c *chobin.Chobin) {
	if k.panel != c.ID() {
		return
	}
	k.publish(stage.Event{Kind: stage.EventCommandPanel, Chobin: stage.Ref(c.ID()), Data: map[string]any{"panel": k.panelFor(c)}})
}

// translate maps chobin range errors onto the kitchen's sentinels.
func translate(err, valueErr error) error {
	switch {
	case errors.Is(err, chobin.ErrStepOutOfRange):
		return fmt.Errorf("%w: %v", ErrStepOutOfRange, err)
	case errors.Is(err, chobin.ErrValueOutOfRange):
		return fmt.Errorf("%w: %v", valueErr, err)
	}
	return err
}

func (k *Kitchen) reject(id int, op string, err error) error {
	k.log.Warnf("%s rejected: %v", op, err)
	k.publish(stage.Event{Kind: stage.EventCommandRejected, Chobin: stage.Ref(id), Text: err.Error(), Data: map[string]any{"op": op}})
	return err
}
