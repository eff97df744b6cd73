package dish

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIngredientsOrderedSet(t *testing.T) {
	var in Ingredients
	assert.True(t, in.Add("rice"))
	assert.True(t, in.Add("fish"))
	assert.False(t, in.Add("rice"))
	assert.True(t, in.Add("egg"))

	assert.Equal(t, []string{"rice", "fish", "egg"}, in.Names())
	assert.Equal(t, 3, in.Len())
	assert.True(t, in.Contains("fish"))
	assert.False(t, in.Contains("tofu"))
	assert.Equal(t, "rice, fish, egg", in.String())
}

func TestScoreScenarios(t *testing.T) {
	tests := []struct {
		name  string
		dish  Dish
		prefs Preferences
		want  int
	}{
		{
			name:  "liked emotion three steps fast",
			dish:  New(3, 30*time.Second, "A"),
			prefs: Preferences{Liked: NewSet("A"), Emotion: NewSet("A")},
			want:  30,
		},
		{
			name:  "hated zero steps slow floors at zero",
			dish:  New(0, 70*time.Second, "A"),
			prefs: Preferences{Hated: NewSet("A"), Emotion: NewSet("A")},
			want:  0,
		},
		{
			name:  "hated no emotion floors at zero",
			dish:  New(0, 70*time.Second, "A"),
			prefs: Preferences{Hated: NewSet("A")},
			want:  0,
		},
		{
			name:  "liked and hated both apply",
			dish:  New(2, 50*time.Second, "A"),
			prefs: Preferences{Liked: NewSet("A"), Hated: NewSet("A"), Emotion: NewSet("A")},
			want:  10,
		},
		{
			name:  "steps outside table score nothing",
			dish:  New(5, 30*time.Second, "A"),
			prefs: Preferences{Emotion: NewSet("A")},
			want:  15,
		},
		{
			name: "empty dish",
			dish: Dish{},
			want: 0,
		},
		{
			name:  "boundaries at 45 and 60 seconds are neutral",
			dish:  New(2, 60*time.Second, "B", "C"),
			prefs: Preferences{Liked: NewSet("B", "C"), Emotion: NewSet("C")},
			want:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.dish, tt.prefs))
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	hated := NewSet("a", "b", "c", "d")
	for steps := -1; steps <= 5; steps++ {
		for _, cook := range []time.Duration{0, 44 * time.Second, 45 * time.Second, 61 * time.Second, time.Hour} {
			d := New(steps, cook, "a", "b", "c", "d")
			assert.GreaterOrEqual(t, Score(d, Preferences{Hated: hated}), 0)
		}
	}
}

func TestStepBonusSpread(t *testing.T) {
	prefs := Preferences{Liked: NewSet("x"), Emotion: NewSet("y")}
	three := New(3, 10*time.Second, "A", "B")
	zero := New(0, 10*time.Second, "A", "B")

	// both raw scores stay above zero so the floor does not hide the gap
	assert.Equal(t, 20, Explain(three, prefs).Raw-Explain(zero, prefs).Raw)

	prefs = Preferences{Emotion: NewSet("A")}
	assert.Equal(t, 20, Score(three, prefs)-Score(zero, prefs))
}

func TestScoreDeterministic(t *testing.T) {
	d := New(2, 40*time.Second, "A", "B", "C")
	p := Preferences{Liked: NewSet("A"), Hated: NewSet("C"), Emotion: NewSet("B")}
	first := Score(d, p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(d, p))
	}
}

func TestExplain(t *testing.T) {
	d := New(1, 61*time.Second, "A", "B")
	b := Explain(d, Preferences{Liked: NewSet("A", "B"), Hated: NewSet("B")})

	assert.Equal(t, Breakdown{Liked: 10, Hated: -5, Timing: -3, Emotion: -5, Steps: 0, Raw: -3, Score: 0}, b)
}

func TestReactionFor(t *testing.T) {
	cases := map[int]Reaction{
		0: Worst, 5: Worst,
		6: OK, 10: OK,
		11: Good, 20: Good,
		21: Great, 25: Great,
		26: Amazing, 40: Amazing,
	}
	for score, want := range cases {
		assert.Equal(t, want, ReactionFor(score), "score %d", score)
	}
	assert.Equal(t, "amazing", Amazing.String())
	assert.Equal(t, "unknown", Reaction(42).String())
}
