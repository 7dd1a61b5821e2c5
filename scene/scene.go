// Package scene is a small in-memory scene graph whose instances can
// be driven by motion actions. Instances are named, carry a transform
// relative to their parent and can be looked up depth first by name.
package scene

import (
	"errors"
	"fmt"

	"zappem.net/pub/kinematics/motion"
)

// Err* are the errors exported by this package.
var (
	ErrNotFound = errors.New("instance not found")
	ErrCycle    = errors.New("instance would become its own ancestor")
)

// PartSuffix is appended to a cable duct's name to name its plates.
const PartSuffix = "_part"

// Instance is a named node of the scene. It implements motion.Entity.
type Instance struct {
	name     string
	t        motion.Transform
	parent   *Instance
	children []*Instance
}

// NewInstance creates a detached instance.
func NewInstance(name string, t motion.Transform) *Instance {
	return &Instance{name: name, t: t}
}

// Name returns the instance name.
func (in *Instance) Name() string { return in.name }

// Transform returns the transform relative to the parent.
func (in *Instance) Transform() motion.Transform { return in.t }

// SetTransform replaces the transform relative to the parent.
func (in *Instance) SetTransform(t motion.Transform) { in.t = t }

// Parent returns the parent instance, nil for a root.
func (in *Instance) Parent() *Instance { return in.parent }

// Children returns the direct children in insertion order.
func (in *Instance) Children() []*Instance {
	return append([]*Instance(nil), in.children...)
}

// Add attaches c as the last child of in, detaching it from any
// previous parent.
func (in *Instance) Add(c *Instance) error {
	for p := in; p != nil; p = p.parent {
		if p == c {
			return fmt.Errorf("%w: %s under %s", ErrCycle, c.name, in.name)
		}
	}
	c.detach()
	c.parent = in
	in.children = append(in.children, c)
	return nil
}

func (in *Instance) detach() {
	p := in.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == in {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	in.parent = nil
}

// World returns the transform from the instance to the scene root.
func (in *Instance) World() motion.Transform {
	t := in.t
	for p := in.parent; p != nil; p = p.parent {
		t = p.t.Mul(t)
	}
	return t
}

// WalkFunc collects, depth first and in child order, every descendant
// of in for which match is true. Matching instances are still
// descended into.
func (in *Instance) WalkFunc(match func(*Instance) bool) []*Instance {
	var found []*Instance
	var walk func(*Instance)
	walk = func(n *Instance) {
		for _, c := range n.children {
			if match(c) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(in)
	return found
}

// Walk collects every descendant named name.
func (in *Instance) Walk(name string) []*Instance {
	return in.WalkFunc(func(c *Instance) bool { return c.name == name })
}

// Plates returns the plates of the cable duct duct: its descendants
// named after it with PartSuffix, as motion entities.
func Plates(duct *Instance) []motion.Entity {
	parts := duct.Walk(duct.name + PartSuffix)
	es := make([]motion.Entity, len(parts))
	for i, p := range parts {
		es[i] = p
	}
	return es
}

// Rebase moves in under newParent, placing it at offset relative to
// its new parent.
func Rebase(in, newParent *Instance, offset motion.Transform) error {
	if err := newParent.Add(in); err != nil {
		return err
	}
	in.t = offset
	return nil
}

// Scene is a tree of instances under an unnamed root.
type Scene struct {
	Root *Instance
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{Root: NewInstance("", motion.Identity())}
}

// Walk collects every instance in the scene named name.
func (s *Scene) Walk(name string) []*Instance {
	return s.Root.Walk(name)
}

// Find returns the first instance, depth first, named name.
func (s *Scene) Find(name string) (*Instance, error) {
	found := s.Root.Walk(name)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return found[0], nil
}
