package motion

import (
	"fmt"
	"math"

	"zappem.net/pub/kinematics/motion/cableduct"
	"zappem.net/pub/kinematics/motion/internal/vec"
	"zappem.net/pub/math/geom"
)

// DuctMove drives the plates of a cable duct to a target extension.
// The duct geometry is extracted from the plates' positions when the
// DuctMove is created; that pose is extension zero.
type DuctMove struct {
	Arrivals
	Duct   Entity
	Plates []Entity

	// Target and Current are extension lengths; Speed is signed
	// toward Target.
	Target, Current, Speed float64

	model *cableduct.Duct
	base  Transform
	// zero is the first plate's direction at extension zero.
	zero geom.Vector
}

// NewDuctMove extracts the cable duct formed by plates, listed in
// order from the floating end to the fixed end. The duct entity only
// names the assembly in errors and descriptions.
func NewDuctMove(duct Entity, plates []Entity) (*DuctMove, error) {
	positions := make([]geom.Vector, len(plates))
	for i, p := range plates {
		positions[i] = p.Transform().Origin()
	}
	model, err := cableduct.Extract(positions)
	if err != nil {
		return nil, fmt.Errorf("failed to create DuctMove with %s: %w", duct.Name(), err)
	}
	model.SetSpacerCount(len(plates))
	_, zero := model.Move(0)
	return &DuctMove{
		Duct:   duct,
		Plates: plates,
		model:  model,
		base:   plates[0].Transform(),
		zero:   zero[0],
	}, nil
}

// Model returns the extracted cable duct.
func (d *DuctMove) Model() *cableduct.Duct {
	return d.model
}

// Kick sets a new target extension and heads toward it at speed.
// The current extension is kept, so successive kicks compose.
func (d *DuctMove) Kick(target, speed float64) {
	d.Target = target
	d.Speed = math.Abs(speed)
	if target < d.Current {
		d.Speed = -d.Speed
	}
}

// Arrived reports whether the duct is at its target extension.
func (d *DuctMove) Arrived() bool {
	return d.Target == d.Current
}

// Tick extends the duct toward the target and repositions every
// plate.
func (d *DuctMove) Tick(elapsed float64) {
	if d.Arrived() {
		return
	}
	d.Current, _ = advance(d.Current, d.Target, d.Speed, elapsed)
	d.place()
	d.fire(d)
}

// place poses every plate for the current extension. Each plate is
// rebuilt from the first plate's zero pose: moved to its new position
// and turned about the duct normal by the angle its direction makes
// with the first plate's zero direction.
func (d *DuctMove) place() {
	pos, dirs := d.model.Move(d.Current)
	origin := geom.V(0, 0, 0)
	for i, p := range d.Plates {
		tx := Translate(pos[i].Sub(d.base.Origin()))
		if rx, err := Rotate(origin, d.model.Normal, vec.AngleBetween(dirs[i], d.zero)); err == nil {
			p.SetTransform(d.base.Mul(tx).Mul(rx))
		}
	}
}

func (d *DuctMove) String() string {
	return fmt.Sprintf("DuctMove %s: speed %g, target %g, current %g", d.Duct.Name(), d.Speed, d.Target, d.Current)
}

// ChainedDuctMove extends a DuctMove by a relative amount, measured
// from the extension the duct has when the ChainedDuctMove first
// ticks. Several of them can share one DuctMove in a sequence.
type ChainedDuctMove struct {
	Arrivals
	Delta, Speed float64

	duct   *DuctMove
	kicked bool
}

// NewChainedDuctMove extends duct by delta at speed.
func NewChainedDuctMove(duct *DuctMove, delta, speed float64) *ChainedDuctMove {
	return &ChainedDuctMove{
		Delta: delta,
		Speed: speed,
		duct:  duct,
	}
}

// Arrived is false until the first tick, then mirrors the duct.
func (c *ChainedDuctMove) Arrived() bool {
	return c.kicked && c.duct.Arrived()
}

// Tick kicks the duct on first use, taking over its arrival
// callbacks, and then forwards to it.
func (c *ChainedDuctMove) Tick(elapsed float64) {
	if !c.kicked {
		c.duct.Kick(c.duct.Current+c.Delta, c.Speed)
		c.duct.fns = []func(Action){func(Action) { c.fire(c) }}
		c.kicked = true
		if c.duct.Arrived() {
			// Nothing to move; still report arrival.
			c.fire(c)
			return
		}
	}
	if c.Arrived() {
		return
	}
	c.duct.Tick(elapsed)
}

func (c *ChainedDuctMove) String() string {
	return c.duct.String()
}
