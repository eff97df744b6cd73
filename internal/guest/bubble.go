package guest

import (
	"fmt"

	"cocan/internal/dish"
)

// BubbleKind is what the bubble over a guest is showing.
type BubbleKind int

const (
	BubbleHidden BubbleKind = iota
	BubbleOrder
	BubbleReaction
)

func (k BubbleKind) String() string {
	switch k {
	case BubbleOrder:
		return "order"
	case BubbleReaction:
		return "reaction"
	default:
		return "hidden"
	}
}

func (k BubbleKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *BubbleKind) UnmarshalText(text []byte) error {
	for _, c := range []BubbleKind{BubbleHidden, BubbleOrder, BubbleReaction} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown bubble kind %q", text)
}

// Bubble is the text over a guest's head.
type Bubble struct {
	Kind BubbleKind `json:"kind"`
	Text string     `json:"text,omitempty"`
}

// Visible reports whether anything is shown.
func (b Bubble) Visible() bool { return b.Kind != BubbleHidden }

func (g *Guest) bubbleKey() string { return fmt.Sprintf("guest/%d/bubble", g.id) }

func (g *Guest) setBubble(b Bubble) {
	if g.bubble == b {
		return
	}
	g.bubble = b
	if g.env.OnBubble != nil {
		g.env.OnBubble(g)
	}
}

// ShowOrder shows the guest's order text, cancelling any pending reaction
// hide.
func (g *Guest) ShowOrder() {
	g.env.Scheduler.Cancel(g.bubbleKey())
	g.setBubble(Bubble{Kind: BubbleOrder, Text: g.orderText})
}

// HideOrder hides the bubble if it is showing the order. A reaction stays up
// until its window ends.
func (g *Guest) HideOrder() {
	if g.bubble.Kind == BubbleOrder {
		g.setBubble(Bubble{})
	}
}

// ShowReaction shows the reaction for score and hides it after the reaction
// window.
func (g *Guest) ShowReaction(score int) dish.Reaction {
	r := dish.ReactionFor(score)
	g.setBubble(Bubble{Kind: BubbleReaction, Text: r.String()})
	g.env.Scheduler.After(g.bubbleKey(), g.env.ReactionWindow, func() {
		if g.bubble.Kind == BubbleReaction {
			g.setBubble(Bubble{})
		}
	})
	return r
}
