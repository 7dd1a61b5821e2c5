// Package pathgraph orders loosely specified paths. FindPath stitches
// an unordered set of undirected edges, each possibly reversed, into
// the single open path they describe. FindPathClosest orders bare
// points by greedy nearest neighbour.
package pathgraph

import (
	"errors"
	"fmt"

	"zappem.net/pub/math/geom"
)

// ErrIndex is returned for an endpoint index other than 0, 1 or -1.
var ErrIndex = errors.New("invalid edge index")

// Edge is an undirected connection between two vertices.
type Edge[T comparable] struct {
	Start, End T
}

// E is shorthand for Edge{Start: s, End: e}.
func E[T comparable](s, e T) Edge[T] {
	return Edge[T]{Start: s, End: e}
}

// At returns the Start (i=0) or End (i=1 or i=-1) of the edge.
func (e Edge[T]) At(i int) (T, error) {
	switch i {
	case 0:
		return e.Start, nil
	case 1, -1:
		return e.End, nil
	}
	var zero T
	return zero, fmt.Errorf("%w %d on edge", ErrIndex, i)
}

// other returns the endpoint of e opposite to v.
func (e Edge[T]) other(v T) T {
	if e.Start == v {
		return e.End
	}
	return e.Start
}

// stitcher holds the open edges indexed by the vertices they touch.
type stitcher[T comparable] struct {
	edges []Edge[T]
	used  []bool
	touch map[T][]int
}

func newStitcher[T comparable](edges []Edge[T]) *stitcher[T] {
	s := &stitcher[T]{
		edges: edges,
		used:  make([]bool, len(edges)),
		touch: make(map[T][]int, 2*len(edges)),
	}
	for i, e := range edges {
		s.touch[e.Start] = append(s.touch[e.Start], i)
		if e.End != e.Start {
			s.touch[e.End] = append(s.touch[e.End], i)
		}
	}
	return s
}

// take consumes one unused edge touching v and returns the vertex at
// its far end.
func (s *stitcher[T]) take(v T) (T, bool) {
	ids := s.touch[v]
	for len(ids) > 0 {
		i := ids[0]
		ids = ids[1:]
		if s.used[i] {
			continue
		}
		s.used[i] = true
		s.touch[v] = ids
		return s.edges[i].other(v), true
	}
	s.touch[v] = ids
	var zero T
	return zero, false
}

// grow extends from end until no unused edge touches it, returning
// the vertices visited in order of discovery.
func (s *stitcher[T]) grow(end T) []T {
	var out []T
	for {
		next, ok := s.take(end)
		if !ok {
			return out
		}
		out = append(out, next)
		end = next
	}
}

// FindPath returns the vertices of the simple open path formed by
// edges, from one extremity to the other. The order of the edges, and
// of the endpoints within each edge, does not matter. Starting from
// the first edge the path is grown at its tail and then at its head;
// the result for edges not forming exactly one open path is
// unspecified.
func FindPath[T comparable](edges []Edge[T]) []T {
	if len(edges) == 0 {
		return nil
	}
	s := newStitcher(edges)
	seed := edges[0]
	s.used[0] = true

	tail := s.grow(seed.End)
	head := s.grow(seed.Start)

	path := make([]T, 0, len(head)+len(tail)+2)
	for i := len(head) - 1; i >= 0; i-- {
		path = append(path, head[i])
	}
	path = append(path, seed.Start, seed.End)
	return append(path, tail...)
}

// FindPathClosest orders points into an open path starting at
// points[0], repeatedly appending whichever remaining point is
// nearest to the last one placed. Ties go to the earliest remaining
// point. The input slice is left untouched.
func FindPathClosest(points []geom.Vector) []geom.Vector {
	if len(points) == 0 {
		return nil
	}
	rest := make([]geom.Vector, len(points)-1)
	copy(rest, points[1:])
	path := []geom.Vector{points[0]}
	for len(rest) > 0 {
		last := path[len(path)-1]
		best, bestD := 0, -1.0
		for i, p := range rest {
			if d := last.Sub(p).R(); bestD < 0 || d < bestD {
				best, bestD = i, d
			}
		}
		path = append(path, rest[best])
		rest = append(rest[:best], rest[best+1:]...)
	}
	return path
}
