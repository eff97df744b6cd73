// Package geometry provides the small amount of 3D math the simulation needs:
// a value-type vector and a kinematic mover that walks toward a destination
// at a fixed speed.
package geometry

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in world space. Y is up; guests and chobins
// only ever move on the XZ plane, but Y is carried through unchanged.
type Vec3 struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
	Z float64 `json:"z" yaml:"z" mapstructure:"z"`
}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Zero is the origin.
var Zero = Vec3{}

func (v Vec3) Add(o Vec3) Vec3               { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3               { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(k float64) Vec3          { return Vec3{v.X * k, v.Y * k, v.Z * k} }
func (v Vec3) Len() float64                  { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Dist(o Vec3) float64           { return v.Sub(o).Len() }
func (v Vec3) IsZero() bool                  { return v == Zero }
func (v Vec3) Equal(o Vec3) bool             { return v == o }
func (v Vec3) String() string                { return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z) }
func (v Vec3) Within(o Vec3, r float64) bool { return v.Dist(o) < r }

// Normalized returns the unit vector in the direction of v, or Zero when v
// has no length.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

// Yaw returns the heading of v around the Y axis in degrees, measured from
// +Z toward +X.
func (v Vec3) Yaw() float64 {
	n := v.Normalized()
	return math.Atan2(n.X, n.Z) * 180 / math.Pi
}

// MoveTowards moves current toward target by at most maxDelta. When the
// remaining distance is within maxDelta the target itself is returned, so
// callers can detect arrival with an exact comparison.
func MoveTowards(current, target Vec3, maxDelta float64) Vec3 {
	d := target.Sub(current)
	dist := d.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return current.Add(d.Scale(maxDelta / dist))
}
