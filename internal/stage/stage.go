// Package stage is the boundary between the simulation and whatever draws
// it. The simulation never renders anything; it tells a Presenter where its
// agents face and which animation cue to play, and publishes Events for
// scoreboards and UIs.
package stage

import "cocan/internal/geometry"

// AgentKind distinguishes guests from chobins in presentation calls.
type AgentKind string

const (
	KindGuest  AgentKind = "guest"
	KindChobin AgentKind = "chobin"
)

// AgentRef names one visual agent.
type AgentRef struct {
	Kind AgentKind `json:"kind"`
	ID   int       `json:"id"`
}

// Guest and Chobin build AgentRefs.
func Guest(id int) AgentRef  { return AgentRef{Kind: KindGuest, ID: id} }
func Chobin(id int) AgentRef { return AgentRef{Kind: KindChobin, ID: id} }

// Cue is an animation cue.
type Cue string

const (
	CueIdle    Cue = "idle"
	CueWalk    Cue = "walk"
	CuePerform Cue = "perform"
	CueExit    Cue = "exit"
)

// Presenter receives presentation side effects from the simulation.
type Presenter interface {
	Face(agent AgentRef, dir geometry.Vec3)
	Cue(agent AgentRef, cue Cue)
}

// Nop is a Presenter that ignores everything.
type Nop struct{}

func (Nop) Face(AgentRef, geometry.Vec3) {}
func (Nop) Cue(AgentRef, Cue)            {}

// Call is one presentation call: a facing when Cue is empty, a cue otherwise.
type Call struct {
	Agent  AgentRef
	Cue    Cue
	Facing geometry.Vec3
}

// Script is a Presenter that keeps every call in order; handy in tests.
type Script struct {
	Calls []Call
}

func (s *Script) Face(agent AgentRef, dir geometry.Vec3) {
	s.Calls = append(s.Calls, Call{Agent: agent, Facing: dir})
}

func (s *Script) Cue(agent AgentRef, cue Cue) {
	s.Calls = append(s.Calls, Call{Agent: agent, Cue: cue})
}

// For returns the calls made for agent.
func (s *Script) For(agent AgentRef) []Call {
	var out []Call
	for _, c := range s.Calls {
		if c.Agent == agent {
			out = append(out, c)
		}
	}
	return out
}

// Cues returns the cues played by agent, in order.
func (s *Script) Cues(agent AgentRef) []Cue {
	var out []Cue
	for _, c := range s.For(agent) {
		if c.Cue != "" {
			out = append(out, c.Cue)
		}
	}
	return out
}
