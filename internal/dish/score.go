package dish

import "time"

// Scoring constants.
const (
	LikedBonus     = 5
	HatedPenalty   = -5
	FastBonus      = 10
	SlowPenalty    = -3
	EmotionBonus   = 5
	EmotionPenalty = -5

	FastCookLimit = 45 * time.Second
	SlowCookLimit = 60 * time.Second
)

// stepBonus maps a step count to its adjustment. Counts outside the table
// score nothing.
var stepBonus = map[int]int{
	3: 10,
	2: 5,
	1: 0,
	0: -10,
}

// Breakdown itemises how a score was reached.
type Breakdown struct {
	Liked   int `json:"liked"`
	Hated   int `json:"hated"`
	Timing  int `json:"timing"`
	Emotion int `json:"emotion"`
	Steps   int `json:"steps"`
	Raw     int `json:"raw"`
	Score   int `json:"score"`
}

// Explain scores d for p and returns every contribution.
//
// An ingredient that is both liked and hated counts both ways.
func Explain(d Dish, p Preferences) Breakdown {
	var b Breakdown
	hasEmotion := false
	for _, name := range d.Ingredients.names {
		if p.Liked.Has(name) {
			b.Liked += LikedBonus
		}
		if p.Hated.Has(name) {
			b.Hated += HatedPenalty
		}
		if p.Emotion.Has(name) {
			hasEmotion = true
		}
	}

	switch {
	case d.CookTime < FastCookLimit:
		b.Timing = FastBonus
	case d.CookTime > SlowCookLimit:
		b.Timing = SlowPenalty
	}

	if hasEmotion {
		b.Emotion = EmotionBonus
	} else {
		b.Emotion = EmotionPenalty
	}

	b.Steps = stepBonus[d.Steps]

	b.Raw = b.Liked + b.Hated + b.Timing + b.Emotion + b.Steps
	b.Score = max(0, b.Raw)
	return b
}

// Score returns the non-negative score of d for a guest with preferences p.
func Score(d Dish, p Preferences) int {
	return Explain(d, p).Score
}
