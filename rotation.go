package motion

import (
	"fmt"
	"math"

	"zappem.net/pub/math/geom"
)

// Rotation turns an entity about an axis through its own origin until
// it has rotated by the target angle.
type Rotation struct {
	Arrivals
	Entity Entity
	Axis   geom.Vector

	// Speed is the angular speed per second. Its sign follows the
	// sign of Target.
	Speed geom.Angle

	Target, Current geom.Angle
}

// NewRotation rotates e about axis by target at speed per second.
func NewRotation(e Entity, axis geom.Vector, speed, target geom.Angle) (*Rotation, error) {
	n, err := axis.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: rotation axis %v: %v", ErrBadAxis, axis, err)
	}
	speed = geom.Angle(math.Abs(float64(speed)))
	if target < 0 {
		speed = -speed
	}
	return &Rotation{
		Entity: e,
		Axis:   n,
		Speed:  speed,
		Target: target,
	}, nil
}

// Arrived reports whether the rotation has reached its target angle.
func (r *Rotation) Arrived() bool {
	return r.Target == r.Current
}

// Tick rotates the entity by speed*elapsed, clamped to the target.
func (r *Rotation) Tick(elapsed float64) {
	if r.Arrived() {
		return
	}
	next, delta := advance(float64(r.Current), float64(r.Target), float64(r.Speed), elapsed)
	r.Current = geom.Angle(next)
	if rot, err := Rotate(r.Entity.Transform().Origin(), r.Axis, geom.Angle(delta)); err == nil {
		TransformBy(r.Entity, rot)
	}
	r.fire(r)
}

func (r *Rotation) String() string {
	if r.Arrived() {
		return fmt.Sprintf("%s arrived at %v", r.Entity.Name(), r.Target)
	}
	return fmt.Sprintf("rotate %s at %v about %v toward %v with angular speed %v", r.Entity.Name(), r.Entity.Transform().Origin(), r.Axis, r.Target, r.Speed)
}
