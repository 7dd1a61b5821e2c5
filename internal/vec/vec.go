// Package vec holds the few vector operations the motion packages
// need that are not part of the geom package.
package vec

import (
	"math"

	"zappem.net/pub/math/geom"
)

// Dot returns the scalar product of two 3-vectors.
func Dot(a, b geom.Vector) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// AngleBetween returns the unsigned angle, in [0,pi], between a and
// b. Either vector being zero yields a zero angle.
func AngleBetween(a, b geom.Vector) geom.Angle {
	c := a.Cross(b).R()
	d := Dot(a, b)
	if geom.Zeroish(c) && geom.Zeroish(d) {
		return 0
	}
	return geom.Angle(math.Atan2(c, d))
}

// Parallel reports whether a and b point along the same line, in
// either sense.
func Parallel(a, b geom.Vector) bool {
	ra, rb := a.R(), b.R()
	if geom.Zeroish(ra) || geom.Zeroish(rb) {
		return false
	}
	return geom.Zeroish(a.Cross(b).R() / (ra * rb))
}

// Unit returns the normalized direction of v, or the zero vector when
// v has no length.
func Unit(v geom.Vector) geom.Vector {
	u, err := v.Normalize()
	if err != nil {
		return geom.V(0, 0, 0)
	}
	return u
}

// Distance returns |a-b|.
func Distance(a, b geom.Vector) float64 {
	return a.Sub(b).R()
}
