package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"zappem.net/pub/kinematics/motion"
	"zappem.net/pub/math/geom"
)

// File is the YAML form of a scene.
type File struct {
	Instances []Node `yaml:"instances"`
}

// Node is the YAML form of one instance and its subtree.
type Node struct {
	Name   string    `yaml:"name"`
	Origin []float64 `yaml:"origin"`
	Rotate *Turn     `yaml:"rotate"`

	// Parts places one child named Name+PartSuffix at each point,
	// in order; it is the usual way to describe a cable duct.
	Parts    [][]float64 `yaml:"parts"`
	Children []Node      `yaml:"children"`
}

// Turn is an axis-angle rotation about the instance origin.
type Turn struct {
	Axis    []float64 `yaml:"axis"`
	Degrees float64   `yaml:"degrees"`
}

// Point converts a YAML coordinate list into a vector.
func Point(xyz []float64) (geom.Vector, error) {
	switch len(xyz) {
	case 0:
		return geom.V(0, 0, 0), nil
	case 3:
		return geom.V(xyz...), nil
	}
	return nil, fmt.Errorf("want 3 coordinates, got %v", xyz)
}

func (n Node) transform() (motion.Transform, error) {
	at, err := Point(n.Origin)
	if err != nil {
		return motion.Transform{}, fmt.Errorf("%s origin: %w", n.Name, err)
	}
	t := motion.Translate(at)
	if n.Rotate == nil {
		return t, nil
	}
	axis, err := Point(n.Rotate.Axis)
	if err != nil {
		return motion.Transform{}, fmt.Errorf("%s rotate axis: %w", n.Name, err)
	}
	r, err := motion.Rotate(at, axis, geom.Degrees(n.Rotate.Degrees))
	if err != nil {
		return motion.Transform{}, fmt.Errorf("%s rotate: %w", n.Name, err)
	}
	return r.Mul(t), nil
}

func (n Node) build(parent *Instance) error {
	if n.Name == "" {
		return fmt.Errorf("instance under %q has no name", parent.name)
	}
	t, err := n.transform()
	if err != nil {
		return err
	}
	in := NewInstance(n.Name, t)
	if err := parent.Add(in); err != nil {
		return err
	}
	for i, p := range n.Parts {
		at, err := Point(p)
		if err != nil {
			return fmt.Errorf("%s part %d: %w", n.Name, i, err)
		}
		if err := in.Add(NewInstance(n.Name+PartSuffix, motion.Translate(at))); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := c.build(in); err != nil {
			return err
		}
	}
	return nil
}

// Parse builds a scene from its YAML description.
func Parse(data []byte) (*Scene, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	s := New()
	for _, n := range f.Instances {
		if err := n.build(s.Root); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load reads a YAML scene file.
func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
