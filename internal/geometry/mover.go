package geometry

import "time"

// Mover is a kinematic body walking toward a destination at constant speed.
// Arrival is reported exactly once per destination.
type Mover struct {
	pos     Vec3
	dest    Vec3
	speed   float64
	arrived bool
}

// NewMover places a stationary body at pos. A stationary body counts as
// arrived until it is given a destination.
func NewMover(pos Vec3, speed float64) *Mover {
	return &Mover{pos: pos, dest: pos, speed: speed, arrived: true}
}

func (m *Mover) Position() Vec3    { return m.pos }
func (m *Mover) Destination() Vec3 { return m.dest }
func (m *Mover) Speed() float64    { return m.speed }
func (m *Mover) Arrived() bool     { return m.arrived }

// SetSpeed changes the walking speed in units per second.
func (m *Mover) SetSpeed(speed float64) { m.speed = speed }

// SetDestination starts walking toward target and returns the walking
// direction. Arrival is re-armed even when target equals the current
// position; the next Step then reports arrival immediately.
func (m *Mover) SetDestination(target Vec3) Vec3 {
	m.dest = target
	m.arrived = false
	return target.Sub(m.pos)
}

// Stop cancels the current destination without reporting arrival.
func (m *Mover) Stop() {
	m.dest = m.pos
	m.arrived = true
}

// Step advances the body by dt and reports whether it reached its
// destination during this step.
func (m *Mover) Step(dt time.Duration) bool {
	if m.arrived {
		return false
	}
	m.pos = MoveTowards(m.pos, m.dest, m.speed*dt.Seconds())
	if m.pos == m.dest {
		m.arrived = true
		return true
	}
	return false
}
