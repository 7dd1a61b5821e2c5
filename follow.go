package motion

import (
	"fmt"

	"zappem.net/pub/kinematics/motion/internal/vec"
	"zappem.net/pub/math/geom"
)

// FollowPath moves an entity along an ordered polyline at constant
// speed.
type FollowPath struct {
	Arrivals
	Entity Entity
	Path   []geom.Vector
	Speed  float64

	// distances[i] is the path length from Path[0] to Path[i].
	distances []float64
	index     int
	traveled  float64
	position  geom.Vector
	arrived   bool
}

// NewFollowPath moves e along path at speed units per second. The
// entity is assumed to start at path[0].
func NewFollowPath(e Entity, path []geom.Vector, speed float64) *FollowPath {
	f := &FollowPath{
		Entity:    e,
		Path:      path,
		Speed:     speed,
		distances: make([]float64, len(path)),
	}
	if len(path) > 0 {
		f.position = geom.V(path[0]...)
	}
	for i := 1; i < len(path); i++ {
		f.distances[i] = f.distances[i-1] + vec.Distance(path[i], path[i-1])
	}
	return f
}

// Arrived reports whether the end of the path has been reached.
func (f *FollowPath) Arrived() bool {
	return f.arrived
}

// Traveled returns the path length covered so far.
func (f *FollowPath) Traveled() float64 {
	return f.traveled
}

// Length returns the total length of the path.
func (f *FollowPath) Length() float64 {
	if len(f.distances) == 0 {
		return 0
	}
	return f.distances[len(f.distances)-1]
}

// Index returns the index of the path point the entity is heading to,
// which is len(Path) once the path is complete.
func (f *FollowPath) Index() int {
	return f.index
}

// Tick advances the entity speed*elapsed along the path.
func (f *FollowPath) Tick(elapsed float64) {
	if f.arrived {
		return
	}
	f.step(elapsed)
	f.fire(f)
}

// step advances along the path without notifying arrival.
func (f *FollowPath) step(elapsed float64) {
	n := len(f.distances)
	if n < 2 {
		f.arrived = true
		f.index = n
		return
	}

	ds := f.traveled + f.Speed*elapsed
	j := f.index
	for j < n && f.distances[j] < ds {
		j++
	}
	f.index = j

	var s float64
	if j == n {
		f.arrived = true
		j = n - 1
		ds = f.distances[j]
		s = f.distances[j] - f.distances[j-1]
	} else {
		if j == 0 {
			j = 1
		}
		s = ds - f.distances[j-1]
	}
	f.traveled = ds

	at := f.Path[j-1].AddS(vec.Unit(f.Path[j].Sub(f.Path[j-1])), s)
	if f.arrived {
		at = geom.V(f.Path[j]...)
	}
	TransformBy(f.Entity, Translate(at.Sub(f.position)))
	f.position = at
}

func (f *FollowPath) String() string {
	return fmt.Sprintf("follow %s: speed %g, index %d, traveled %g of %g", f.Entity.Name(), f.Speed, f.index, f.traveled, f.Length())
}

// FollowWithDir follows a path and turns the entity at each corner so
// that it keeps its heading relative to the path.
type FollowWithDir struct {
	Arrivals
	follow *FollowPath

	// directions[i] is the unit direction of segment i.
	directions []geom.Vector
}

// NewFollowWithDir moves e along path at speed, rotating e about its
// own origin by the turn angle whenever it passes a path point.
func NewFollowWithDir(e Entity, path []geom.Vector, speed float64) *FollowWithDir {
	f := &FollowWithDir{
		follow: NewFollowPath(e, path, speed),
	}
	for i := 1; i < len(path); i++ {
		f.directions = append(f.directions, vec.Unit(path[i].Sub(path[i-1])))
	}
	return f
}

// Arrived reports whether the end of the path has been reached.
func (f *FollowWithDir) Arrived() bool {
	return f.follow.Arrived()
}

// Path returns the underlying path follower.
func (f *FollowWithDir) Path() *FollowPath {
	return f.follow
}

// Tick advances along the path, then turns the entity if it moved on
// to a new segment.
func (f *FollowWithDir) Tick(elapsed float64) {
	if f.Arrived() {
		return
	}
	last := len(f.follow.distances) - 1
	i := min(f.follow.index, last)
	f.follow.step(elapsed)
	j := min(f.follow.index, last)

	if i != j && i != 0 {
		di := f.directions[i-1]
		dj := f.directions[j-1]
		if n := di.Cross(dj); !geom.Zeroish(n.R()) {
			e := f.follow.Entity
			rot, err := Rotate(e.Transform().Origin(), n, vec.AngleBetween(di, dj))
			if err == nil {
				TransformBy(e, rot)
			}
		}
	}
	f.fire(f)
}

func (f *FollowWithDir) String() string {
	return f.follow.String()
}
