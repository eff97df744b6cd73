package dish

// Reaction is how a guest responds to a scored dish.
type Reaction int

const (
	Worst Reaction = iota
	OK
	Good
	Great
	Amazing
)

var reactionLabels = [...]string{
	Worst:   "worst",
	OK:      "ok",
	Good:    "good",
	Great:   "great",
	Amazing: "amazing",
}

func (r Reaction) String() string {
	if r < Worst || r > Amazing {
		return "unknown"
	}
	return reactionLabels[r]
}

// ReactionFor maps a score to a reaction.
func ReactionFor(score int) Reaction {
	switch {
	case score <= 5:
		return Worst
	case score <= 10:
		return OK
	case score <= 20:
		return Good
	case score <= 25:
		return Great
	default:
		return Amazing
	}
}
