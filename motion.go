// Package motion animates rigid entities toward goals over time.
//
// Motion is expressed as Actions: steppable, time driven moves
// (translations, path following, rotations, cable duct extension)
// that advance by elapsed seconds on every Tick and report, once,
// when they have arrived. A Movement owns the set of active actions,
// ticks them once per frame, retires the ones that arrive and lets
// arrival callbacks activate successors, so sequential and fan-out
// choreographies are wired together ahead of time:
//
//	m := motion.New()
//	m.Chain(lift, swing, lower)
//	m.ChainConcurrent(lower, openClamp, extendDuct)
//	m.ReturnHomeWhenFinished(arm)
//	m.RunFrames(500, 0.02)
//
// All of the work happens on the caller's goroutine; nothing blocks.
package motion

import (
	"errors"
	"fmt"

	"zappem.net/pub/math/geom"
)

// Err* are the errors exported by this package.
var (
	ErrBadAxis = errors.New("invalid axis")
)

// Transform is a rigid transform: the point p maps to M*p + V.
type Transform struct {
	M geom.Matrix
	V geom.Vector
}

// Identity returns the transform that leaves every point in place.
func Identity() Transform {
	return Transform{
		M: geom.M(geom.I...),
		V: geom.V(0, 0, 0),
	}
}

// Translate returns the transform that shifts every point by v.
func Translate(v geom.Vector) Transform {
	return Transform{
		M: geom.M(geom.I...),
		V: geom.V(v...),
	}
}

// Rotate returns the transform that rotates points by angle a
// around axis, with the axis passing through pivot.
func Rotate(pivot, axis geom.Vector, a geom.Angle) (Transform, error) {
	n, err := axis.Normalize()
	if err != nil {
		return Transform{}, fmt.Errorf("%w: %v", ErrBadAxis, err)
	}
	r, err := n.RV(a)
	if err != nil {
		return Transform{}, err
	}
	return Transform{
		M: r,
		V: pivot.Sub(r.XV(pivot)),
	}, nil
}

// Mul composes two transforms. The result applies o first and then
// t, so a.Mul(b).Mul(c) reads left to right like the matrix product
// a*b*c.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		M: t.M.XM(o.M),
		V: t.M.XV(o.V).Add(t.V),
	}
}

// Apply maps the point p through t.
func (t Transform) Apply(p geom.Vector) geom.Vector {
	return t.M.XV(p).Add(t.V)
}

// Origin returns where t places the local origin.
func (t Transform) Origin() geom.Vector {
	return geom.V(t.V...)
}

// Equals reports whether two transforms agree to within geom
// precision.
func (t Transform) Equals(o Transform) bool {
	return t.M.Equals(o.M) && t.V.Equals(o.V)
}

func (t Transform) String() string {
	return fmt.Sprintf("{M:%v V:%v}", t.M, t.V)
}

// Entity is a rigid object of the host scene that actions can drive.
type Entity interface {
	Name() string
	Transform() Transform
	SetTransform(Transform)
}

// TransformBy applies t to e in place, after e's current transform.
func TransformBy(e Entity, t Transform) {
	e.SetTransform(t.Mul(e.Transform()))
}

// Axis selects one of the coordinate axes for directional moves.
type Axis int

// The coordinate axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Vector returns a vector of length d along the axis.
func (a Axis) Vector(d float64) (geom.Vector, error) {
	switch a {
	case AxisX:
		return geom.V(d, 0, 0), nil
	case AxisY:
		return geom.V(0, d, 0), nil
	case AxisZ:
		return geom.V(0, 0, d), nil
	}
	return nil, fmt.Errorf("%w %d: expected AxisX, AxisY or AxisZ", ErrBadAxis, int(a))
}

// ParseAxis converts "x", "y" or "z" (either case) into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return -1, fmt.Errorf("%w %q: expected x, y or z", ErrBadAxis, s)
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}
