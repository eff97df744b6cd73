package geometry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMoveTowards(t *testing.T) {
	from := V(0, 0, 0)
	to := V(3, 0, 4)

	step := MoveTowards(from, to, 1)
	assert.InDelta(t, 0.6, step.X, 1e-9)
	assert.InDelta(t, 0.8, step.Z, 1e-9)
	assert.InDelta(t, 1, step.Len(), 1e-9)

	assert.Equal(t, to, MoveTowards(from, to, 5))
	assert.Equal(t, to, MoveTowards(from, to, 10))
	assert.Equal(t, to, MoveTowards(to, to, 0))
}

func TestYaw(t *testing.T) {
	assert.InDelta(t, 0, V(0, 0, 1).Yaw(), 1e-9)
	assert.InDelta(t, 90, V(1, 0, 0).Yaw(), 1e-9)
	assert.InDelta(t, -90, V(-2, 0, 0).Yaw(), 1e-9)
}

func TestMoverReportsArrivalOnce(t *testing.T) {
	m := NewMover(V(0, 0, 0), 1)
	assert.True(t, m.Arrived())
	assert.False(t, m.Step(time.Second), "stationary body must not report arrival")

	m.SetDestination(V(0, 0, 2))
	assert.False(t, m.Step(time.Second))
	assert.True(t, m.Step(time.Second))
	assert.False(t, m.Step(time.Second))
	assert.Equal(t, V(0, 0, 2), m.Position())
}

func TestMoverSameSpotArrivesNextStep(t *testing.T) {
	m := NewMover(V(1, 0, 1), 1)
	m.SetDestination(V(1, 0, 1))
	assert.False(t, m.Arrived())
	assert.True(t, m.Step(time.Millisecond))
}

func TestMoverStop(t *testing.T) {
	m := NewMover(V(0, 0, 0), 1)
	m.SetDestination(V(10, 0, 0))
	m.Step(time.Second)
	m.Stop()
	assert.True(t, m.Arrived())
	assert.False(t, m.Step(time.Second))
	assert.Equal(t, V(1, 0, 0), m.Position())
}
