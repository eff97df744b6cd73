// Package dish holds the record of a served dish and the rules that score it
// against a guest's tastes.
package dish

import (
	"strings"
	"time"
)

// Ingredients is an ordered set of ingredient names. Insertion order is kept
// and duplicates are rejected.
type Ingredients struct {
	names []string
	seen  map[string]struct{}
}

// NewIngredients builds a set from names, dropping duplicates.
func NewIngredients(names ...string) Ingredients {
	var in Ingredients
	for _, n := range names {
		in.Add(n)
	}
	return in
}

// Add appends name unless already present, reporting whether it was added.
func (in *Ingredients) Add(name string) bool {
	if in.seen == nil {
		in.seen = make(map[string]struct{})
	}
	if _, ok := in.seen[name]; ok {
		return false
	}
	in.seen[name] = struct{}{}
	in.names = append(in.names, name)
	return true
}

// Contains reports whether name is in the set.
func (in Ingredients) Contains(name string) bool {
	_, ok := in.seen[name]
	return ok
}

// Names returns the ingredients in insertion order.
func (in Ingredients) Names() []string {
	out := make([]string, len(in.names))
	copy(out, in.names)
	return out
}

func (in Ingredients) Len() int       { return len(in.names) }
func (in Ingredients) String() string { return strings.Join(in.names, ", ") }

// Dish is built once per serve from a chobin's selections and discarded
// after scoring.
type Dish struct {
	Ingredients Ingredients
	Steps       int
	CookTime    time.Duration
}

// New creates a dish from ingredient names.
func New(steps int, cookTime time.Duration, ingredients ...string) Dish {
	return Dish{
		Ingredients: NewIngredients(ingredients...),
		Steps:       steps,
		CookTime:    cookTime,
	}
}

// Set is a set of ingredient names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in s. A nil set contains nothing.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Preferences is the read-only view of a guest's tastes used for scoring.
type Preferences struct {
	Liked   Set
	Hated   Set
	Emotion Set
}
