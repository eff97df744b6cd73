package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cocan/internal/geometry"
)

func TestFanoutPublishesToEverySink(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	var seen []EventKind
	f := Fanout{a, nil, SinkFunc(func(e Event) { seen = append(seen, e.Kind) }), b}

	f.Publish(Event{Kind: EventGuestSpawned, Guest: Ref(0)})
	f.Publish(Event{Kind: EventDishServed, Guest: Ref(0), Score: Ref(12)})
	f.Publish(Event{Kind: EventGuestSpawned, Guest: Ref(1)})

	want := []EventKind{EventGuestSpawned, EventDishServed, EventGuestSpawned}
	assert.Equal(t, want, a.Kinds())
	assert.Equal(t, want, b.Kinds())
	assert.Equal(t, want, seen)
	assert.Equal(t, 2, a.Count(EventGuestSpawned))
	assert.Equal(t, 0, a.Count(EventSummary))
	assert.Equal(t, 12, *b.Events[1].Score)

	Discard.Publish(Event{Kind: EventSummary})
}

func TestScriptSplitsCallsByAgent(t *testing.T) {
	s := &Script{}
	var p Presenter = s
	p.Face(Guest(0), geometry.V(0, 0, -1))
	p.Cue(Guest(0), CueWalk)
	p.Cue(Chobin(0), CuePerform)
	p.Cue(Guest(0), CueIdle)

	assert.Len(t, s.Calls, 4)
	assert.Equal(t, []Call{
		{Agent: Guest(0), Facing: geometry.V(0, 0, -1)},
		{Agent: Guest(0), Cue: CueWalk},
		{Agent: Guest(0), Cue: CueIdle},
	}, s.For(Guest(0)))
	assert.Equal(t, []Cue{CueWalk, CueIdle}, s.Cues(Guest(0)))
	assert.Equal(t, []Cue{CuePerform}, s.Cues(Chobin(0)))
	assert.Empty(t, s.Cues(Chobin(1)))
}
