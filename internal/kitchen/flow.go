package kitchen

import (
	"cocan/internal/chobin"
	"cocan/internal/dish"
	"cocan/internal/stage"
)

// reconcileOrders pulls the guest at the counter into the serve line when
// more commands are in progress than guests already waiting for a dish.
func (k *Kitchen) reconcileOrders() {
	if k.crew.InProgress() <= k.queue.WaitingGuestCount() || !k.queue.HasGuestReadyToOrder() {
		return
	}
	g, _ := k.queue.OrderingGuest()
	if err := k.queue.AcceptOrder(); err != nil {
		k.log.Errorf("accept order: %v", err)
		return
	}
	g.StartCooking()
	k.recorder.OrderAccepted()
	k.log.Infof("order accepted from guest %d (%s)", g.ID(), g.OrderText())
	k.publish(stage.Event{Kind: stage.EventOrderAccepted, Guest: stage.Ref(g.ID()), Text: g.OrderText()})
}

// judgeNeedToCook shows the waiting button over every idle chobin when more
// commands are needed and hides it otherwise.
func (k *Kitchen) judgeNeedToCook() {
	need := k.NeedToCook()
	for _, c := range k.crew.All() {
		if c.IsCooking() {
			continue
		}
		if need {
			k.setButton(c.ID(), ButtonWaiting)
		} else {
			k.setButton(c.ID(), ButtonHidden)
		}
	}
}

func (k *Kitchen) onServe(c *chobin.Chobin) {
	k.crew.Decrement()
	k.setButton(c.ID(), ButtonHidden)
	defer k.judgeNeedToCook()

	if err := k.queue.ServeDish(); err != nil {
		k.discarded++
		k.recorder.DishDiscarded()
		k.log.Warnf("chobin %d reached the counter but nobody is waiting; dish discarded", c.ID())
		k.publish(stage.Event{Kind: stage.EventDishDiscarded, Chobin: stage.Ref(c.ID())})
		return
	}
	g, _ := k.queue.ServedGuest()

	cook := g.CookingTime()
	d, actions := k.buildDish(c, cook)
	b := dish.Explain(d, g.Preferences())
	reaction := g.ShowReaction(b.Score)

	k.board.Served++
	k.board.TotalScore += b.Score
	k.board.TotalSum = k.board.Served + k.board.TotalScore

	k.log.Infof("chobin %d served guest %d: [%s] x%d steps in %.2fs, score %d (%s)",
		c.ID(), g.ID(), d.Ingredients, d.Steps, cook.Seconds(), b.Score, reaction)

	k.recorder.DishServed(Served{
		Chobin:   c.ID(),
		Guest:    g.ID(),
		Score:    b.Score,
		Reaction: reaction,
		CookTime: cook,
		WaitTime: g.WaitingTime(),
	})
	if err := k.ledger.RecordServe(ServeRecord{
		Session:     k.id,
		Chobin:      c.ID(),
		Guest:       g.ID(),
		Variant:     g.Variant(),
		Ingredients: d.Ingredients.Names(),
		Actions:     actions,
		Steps:       d.Steps,
		CookTime:    cook,
		WaitTime:    g.WaitingTime(),
		Breakdown:   b,
		Reaction:    reaction,
		At:          k.clock.Now(),
	}); err != nil {
		k.log.Warnf("ledger: record serve: %v", err)
	}

	k.publish(stage.Event{
		Kind:   stage.EventDishServed,
		Chobin: stage.Ref(c.ID()),
		Guest:  stage.Ref(g.ID()),
		Score:  stage.Ref(b.Score),
		Text:   reaction.String(),
		Data: map[string]any{
			"ingredients":  d.Ingredients.Names(),
			"actions":      actions,
			"cook_seconds": cook.Seconds(),
			"breakdown":    b,
		},
	})
	k.publishScoreboard()
}

func (k *Kitchen) onReturn(c *chobin.Chobin) {
	k.log.Debugf("chobin %d back at its waiting spot", c.ID())
	k.judgeNeedToCook()
}
