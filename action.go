package motion

import (
	"fmt"

	"zappem.net/pub/kinematics/motion/internal/vec"
	"zappem.net/pub/math/geom"
)

// Action is a time driven move with a terminal arrived state.
type Action interface {
	// Tick advances the action by elapsed seconds. It does nothing
	// once the action has arrived. On the tick that reaches the
	// goal the action lands exactly on it, becomes arrived and
	// invokes its arrival callbacks before returning.
	Tick(elapsed float64)

	// Arrived reports whether the action has reached its goal.
	// Once true it stays true.
	Arrived() bool

	// WhenArrived registers fn to be called on arrival.
	WhenArrived(fn func(Action))
}

// Arrivals is the arrival callback list embedded by every action.
type Arrivals struct {
	fns []func(Action)
}

// WhenArrived appends fn to the callback list.
func (a *Arrivals) WhenArrived(fn func(Action)) {
	a.fns = append(a.fns, fn)
}

// fire invokes the callbacks, in registration order, if self has
// arrived.
func (a *Arrivals) fire(self Action) {
	if !self.Arrived() {
		return
	}
	for _, fn := range a.fns {
		fn(self)
	}
}

// advance steps current toward target at speed for dt seconds. The
// step that would reach or pass the target lands exactly on it.
func advance(current, target, speed, dt float64) (next, delta float64) {
	delta = dt * speed
	if (target-current)*(target-(current+delta)) <= 0 {
		return target, target - current
	}
	return current + delta, delta
}

// Translation moves an entity in a straight line to an absolute
// target position at constant speed.
type Translation struct {
	Arrivals
	Entity Entity
	Target geom.Vector
	Speed  float64

	arrived bool
}

// NewTranslation moves e to target at speed units per second.
func NewTranslation(e Entity, target geom.Vector, speed float64) *Translation {
	return &Translation{
		Entity: e,
		Target: target,
		Speed:  speed,
	}
}

// NewMove moves e by offset, relative to where e is now.
func NewMove(e Entity, offset geom.Vector, speed float64) *Translation {
	return NewTranslation(e, e.Transform().Origin().Add(offset), speed)
}

// NewMoveDir moves e by distance along one coordinate axis, relative
// to where e is now.
func NewMoveDir(e Entity, axis Axis, distance, speed float64) (*Translation, error) {
	v, err := axis.Vector(distance)
	if err != nil {
		return nil, err
	}
	return NewMove(e, v, speed), nil
}

// Arrived reports whether the entity has reached the target.
func (t *Translation) Arrived() bool {
	return t.arrived
}

// Tick moves the entity speed*elapsed closer to the target.
func (t *Translation) Tick(elapsed float64) {
	if t.arrived {
		return
	}
	cur := t.Entity.Transform()
	d := t.Target.Sub(cur.V)
	if step := t.Speed * elapsed; step < d.R() {
		TransformBy(t.Entity, Translate(vec.Unit(d).Scale(step)))
	} else {
		// Land exactly on the target.
		t.Entity.SetTransform(Transform{M: cur.M, V: geom.V(t.Target...)})
		t.arrived = true
	}
	t.fire(t)
}

func (t *Translation) String() string {
	if t.arrived {
		return fmt.Sprintf("%s arrived at %v", t.Entity.Name(), t.Target)
	}
	return fmt.Sprintf("move %s at %v toward %v with speed %g", t.Entity.Name(), t.Entity.Transform().Origin(), t.Target, t.Speed)
}

// Chain is a Translation whose target is an offset from wherever the
// entity happens to be when the chain first ticks. It composes with
// earlier moves of the same entity in a sequence.
type Chain struct {
	Arrivals
	Offset geom.Vector

	resolved bool
	t        *Translation
}

// NewChain moves e by offset, measured from e's position at the
// first tick.
func NewChain(e Entity, offset geom.Vector, speed float64) *Chain {
	c := &Chain{
		Offset: offset,
		t:      NewTranslation(e, nil, speed),
	}
	c.t.WhenArrived(func(Action) { c.fire(c) })
	return c
}

// NewChainDir is NewChain along a coordinate axis.
func NewChainDir(e Entity, axis Axis, distance, speed float64) (*Chain, error) {
	v, err := axis.Vector(distance)
	if err != nil {
		return nil, err
	}
	return NewChain(e, v, speed), nil
}

// Arrived reports whether the underlying translation has arrived.
func (c *Chain) Arrived() bool {
	return c.t.Arrived()
}

// Target returns the resolved absolute target, or nil before the
// first tick.
func (c *Chain) Target() geom.Vector {
	return c.t.Target
}

// Tick resolves the target on first use and advances the translation.
func (c *Chain) Tick(elapsed float64) {
	if !c.resolved {
		c.t.Target = c.t.Entity.Transform().Origin().Add(c.Offset)
		c.resolved = true
	}
	c.t.Tick(elapsed)
}

func (c *Chain) String() string {
	if !c.resolved {
		return fmt.Sprintf("chain %s by %v", c.t.Entity.Name(), c.Offset)
	}
	return c.t.String()
}
