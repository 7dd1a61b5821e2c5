// Package script compiles YAML motion scripts into a motion.Movement
// acting on the instances of a scene.
//
// A script lists its steps under sequence, run one after another, and
// under add, all started at once. Any step may carry then steps,
// started together when it arrives:
//
//	period: 0.05
//	frames: 400
//	home: [cart]
//	sequence:
//	  - {kind: chain, entity: cart, axis: x, distance: 3, speed: 1}
//	  - kind: rotate
//	    entity: arm
//	    vector: [0, 0, 1]
//	    degrees: 90
//	    speed: 45
//	    then:
//	      - {kind: duct, entity: duct, delta: 2, speed: 1}
package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"zappem.net/pub/kinematics/motion"
	"zappem.net/pub/kinematics/motion/pathgraph"
	"zappem.net/pub/kinematics/motion/scene"
	"zappem.net/pub/math/geom"
)

// Err* are the errors exported by this package.
var (
	ErrKind   = errors.New("unknown step kind")
	ErrStep   = errors.New("malformed step")
	ErrPeriod = errors.New("period must be positive")
)

// Step kinds.
const (
	KindMove   = "move"
	KindMoveTo = "moveto"
	KindChain  = "chain"
	KindRotate = "rotate"
	KindFollow = "follow"
	KindDuct   = "duct"
)

// DefaultPeriod is the frame period used when a script names none.
const DefaultPeriod = 0.05

// File is a parsed script.
type File struct {
	// Period is the frame period in seconds.
	Period float64 `yaml:"period"`

	// Frames bounds a headless run. Zero means unbounded for live
	// runs; headless runs pick their own limit.
	Frames int `yaml:"frames"`

	// Home names entities restored when the movement finishes.
	Home []string `yaml:"home"`

	Sequence []Step `yaml:"sequence"`
	Add      []Step `yaml:"add"`
}

// Step is one action of a script. Which fields apply depends on Kind.
type Step struct {
	Kind   string  `yaml:"kind"`
	Entity string  `yaml:"entity"`
	Speed  float64 `yaml:"speed"`

	// move and chain: Offset, or Distance along Axis.
	// moveto: To.
	Axis     string    `yaml:"axis"`
	Distance float64   `yaml:"distance"`
	Offset   []float64 `yaml:"offset"`
	To       []float64 `yaml:"to"`

	// rotate: Degrees about Vector at Speed degrees per second.
	Vector  []float64 `yaml:"vector"`
	Degrees float64   `yaml:"degrees"`

	// follow: an ordered Path, unordered Edges between named
	// Waypoints, or unordered Points joined nearest first. Orient
	// turns the entity with the path.
	Path      [][]float64          `yaml:"path"`
	Edges     [][2]string          `yaml:"edges"`
	Waypoints map[string][]float64 `yaml:"waypoints"`
	Points    [][]float64          `yaml:"points"`
	Orient    bool                 `yaml:"orient"`

	// duct: extend the duct by Delta.
	Delta float64 `yaml:"delta"`

	Then []Step `yaml:"then"`
}

// Parse decodes a script.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	if f.Period == 0 {
		f.Period = DefaultPeriod
	}
	if f.Period < 0 {
		return nil, fmt.Errorf("%w: %g", ErrPeriod, f.Period)
	}
	return f, nil
}

// Load reads a YAML script file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// builder resolves steps against a scene.
type builder struct {
	sc    *scene.Scene
	m     *motion.Movement
	ducts map[*scene.Instance]*motion.DuctMove
}

// Build compiles f into a new Movement over the instances of sc.
func Build(sc *scene.Scene, f *File, opts ...motion.Option) (*motion.Movement, error) {
	b := &builder{
		sc:    sc,
		m:     motion.New(opts...),
		ducts: make(map[*scene.Instance]*motion.DuctMove),
	}
	for _, name := range f.Home {
		in, err := sc.Find(name)
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		b.m.ReturnHomeWhenFinished(in)
	}
	seq, err := b.steps(f.Sequence)
	if err != nil {
		return nil, err
	}
	b.m.Chain(seq...)
	add, err := b.steps(f.Add)
	if err != nil {
		return nil, err
	}
	b.m.Add(add...)
	return b.m, nil
}

// steps compiles ss, attaching each step's then steps to it.
func (b *builder) steps(ss []Step) ([]motion.Action, error) {
	var as []motion.Action
	for i, s := range ss {
		a, err := b.step(s)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s %s): %w", i, s.Kind, s.Entity, err)
		}
		then, err := b.steps(s.Then)
		if err != nil {
			return nil, fmt.Errorf("step %d then: %w", i, err)
		}
		b.m.ChainConcurrent(a, then...)
		as = append(as, a)
	}
	return as, nil
}

func (b *builder) step(s Step) (motion.Action, error) {
	in, err := b.sc.Find(s.Entity)
	if err != nil {
		return nil, err
	}
	if s.Speed <= 0 {
		return nil, fmt.Errorf("%w: speed %g", ErrStep, s.Speed)
	}
	switch s.Kind {
	case KindMove, KindChain:
		return b.relative(in, s)
	case KindMoveTo:
		to, err := scene.Point(s.To)
		if err != nil || s.To == nil {
			return nil, fmt.Errorf("%w: to %v", ErrStep, s.To)
		}
		return motion.NewTranslation(in, to, s.Speed), nil
	case KindRotate:
		axis, err := scene.Point(s.Vector)
		if err != nil {
			return nil, fmt.Errorf("%w: vector: %v", ErrStep, err)
		}
		return motion.NewRotation(in, axis, geom.Degrees(s.Speed), geom.Degrees(s.Degrees))
	case KindFollow:
		path, err := followPath(s)
		if err != nil {
			return nil, err
		}
		if s.Orient {
			return motion.NewFollowWithDir(in, path, s.Speed), nil
		}
		return motion.NewFollowPath(in, path, s.Speed), nil
	case KindDuct:
		d, err := b.duct(in)
		if err != nil {
			return nil, err
		}
		return motion.NewChainedDuctMove(d, s.Delta, s.Speed), nil
	}
	return nil, fmt.Errorf("%w %q", ErrKind, s.Kind)
}

// relative builds move and chain steps. A move measures its offset
// from where the entity is now, a chain from where it is when the
// step starts.
func (b *builder) relative(in *scene.Instance, s Step) (motion.Action, error) {
	if s.Axis != "" {
		axis, err := motion.ParseAxis(s.Axis)
		if err != nil {
			return nil, err
		}
		if s.Kind == KindChain {
			return motion.NewChainDir(in, axis, s.Distance, s.Speed)
		}
		return motion.NewMoveDir(in, axis, s.Distance, s.Speed)
	}
	off, err := scene.Point(s.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: offset: %v", ErrStep, err)
	}
	if s.Kind == KindChain {
		return motion.NewChain(in, off, s.Speed), nil
	}
	return motion.NewMove(in, off, s.Speed), nil
}

// duct returns the one DuctMove driving the plates of in.
func (b *builder) duct(in *scene.Instance) (*motion.DuctMove, error) {
	if d, ok := b.ducts[in]; ok {
		return d, nil
	}
	d, err := motion.NewDuctMove(in, scene.Plates(in))
	if err != nil {
		return nil, err
	}
	b.ducts[in] = d
	return d, nil
}

func points(raw [][]float64) ([]geom.Vector, error) {
	ps := make([]geom.Vector, len(raw))
	for i, r := range raw {
		p, err := scene.Point(r)
		if err != nil {
			return nil, fmt.Errorf("%w: point %d: %v", ErrStep, i, err)
		}
		ps[i] = p
	}
	return ps, nil
}

// followPath resolves the path source of a follow step.
func followPath(s Step) ([]geom.Vector, error) {
	switch {
	case s.Path != nil:
		return points(s.Path)
	case s.Points != nil:
		ps, err := points(s.Points)
		if err != nil {
			return nil, err
		}
		return pathgraph.FindPathClosest(ps), nil
	case s.Edges != nil:
		edges := make([]pathgraph.Edge[string], len(s.Edges))
		for i, e := range s.Edges {
			edges[i] = pathgraph.E(e[0], e[1])
		}
		order := pathgraph.FindPath(edges)
		ps := make([]geom.Vector, len(order))
		for i, name := range order {
			w, ok := s.Waypoints[name]
			if !ok {
				return nil, fmt.Errorf("%w: no waypoint %q", ErrStep, name)
			}
			p, err := scene.Point(w)
			if err != nil {
				return nil, fmt.Errorf("%w: waypoint %q: %v", ErrStep, name, err)
			}
			ps[i] = p
		}
		return ps, nil
	}
	return nil, fmt.Errorf("%w: follow needs path, points or edges", ErrStep)
}
