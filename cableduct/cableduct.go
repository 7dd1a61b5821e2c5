// Package cableduct models a telescoping cable duct: a chain of
// plates laid along a floating straight run, a half-circle bend and a
// fixed straight run.
//
// The duct is described by four reference points in its zero
// extension pose,
//
//	F  -- the free end of the floating run
//	BS -- where the floating run enters the bend
//	BE -- where the bend leaves into the fixed run
//	X  -- the anchored end of the fixed run
//
// with the bend being a half circle of diameter |BE-BS|. Extending the
// duct by d slides the bend along the straight runs by d/2 while the
// floating end advances by d, so the bend keeps its radius and arc
// length and only the lengths of the straight runs change.
package cableduct

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"zappem.net/pub/kinematics/motion/internal/vec"
	"zappem.net/pub/math/geom"
)

// Err* are the errors exported by this package.
var (
	ErrDegenerate = errors.New("degenerate cable duct")
	ErrTooShort   = errors.New("too few points for a cable duct")
	ErrNoBend     = errors.New("no bend found")
)

// MinPoints is the fewest path points Extract accepts.
const MinPoints = 7

// bendTolerance is the turn angle (radians) between consecutive
// segments that separates straight runs from the bend.
const bendTolerance = 0.0001

// Duct holds the immutable geometry of a cable duct and the mutable
// spacer layout of its plates.
type Duct struct {
	Float, BendStart, BendEnd, Fixed geom.Vector

	// U01, U12 and U23 are the unit directions F->BS, BS->BE and
	// BE->X.
	U01, U12, U23 geom.Vector

	// Normal is the unit normal of the plane the duct bends in.
	Normal geom.Vector

	// DM and DF are the floating and fixed run lengths, R the bend
	// radius and DB the bend arc length. Length is DM+DB+DF.
	DM, DF, R, DB, Length float64

	spacer []float64
}

// New builds a cable duct from its four reference points. It fails if
// either straight run or the bend has no length, or if the bend is
// parallel to either straight run.
func New(float, bendStart, bendEnd, fixed geom.Vector) (*Duct, error) {
	d := &Duct{
		Float:     float,
		BendStart: bendStart,
		BendEnd:   bendEnd,
		Fixed:     fixed,
	}
	u01 := bendStart.Sub(float)
	u12 := bendEnd.Sub(bendStart)
	u23 := fixed.Sub(bendEnd)

	d.DM = u01.R()
	d.DF = u23.R()
	d.R = u12.R() / 2
	d.DB = d.R * math.Pi
	d.Length = d.DM + d.DB + d.DF

	if d.DM <= 0 || geom.Zeroish(d.DM) {
		return nil, fmt.Errorf("%w: floating length must be bigger than 0", ErrDegenerate)
	}
	if d.R <= 0 || geom.Zeroish(d.R) {
		return nil, fmt.Errorf("%w: bend radius must be bigger than 0", ErrDegenerate)
	}
	if d.DF <= 0 || geom.Zeroish(d.DF) {
		return nil, fmt.Errorf("%w: fixed length must be bigger than 0", ErrDegenerate)
	}

	d.U01 = u01.Scale(1 / d.DM)
	d.U12 = u12.Scale(1 / (2 * d.R))
	d.U23 = u23.Scale(1 / d.DF)

	if vec.Parallel(d.U01, d.U12) {
		return nil, fmt.Errorf("%w: float direction %v is parallel to bend %v", ErrDegenerate, d.U01, d.U12)
	}
	if vec.Parallel(d.U12, d.U23) {
		return nil, fmt.Errorf("%w: bend direction %v is parallel to fixed %v", ErrDegenerate, d.U12, d.U23)
	}
	n, err := d.U01.Cross(d.U12).Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: no valid normal: %v", ErrDegenerate, err)
	}
	d.Normal = n
	return d, nil
}

// Extract finds the cable duct described by an ordered path of plate
// positions. The bend starts at the first point where the path turns
// and ends at the first later point from which it runs straight again.
func Extract(path []geom.Vector) (*Duct, error) {
	if len(path) < MinPoints {
		return nil, fmt.Errorf("%w: part count %d is less than %d", ErrTooShort, len(path), MinPoints)
	}
	dirs := make([]geom.Vector, len(path)-1)
	for i := range dirs {
		dirs[i] = path[i+1].Sub(path[i])
	}

	start, end := 0, 0
	for i := 0; i+1 < len(dirs); i++ {
		turn := math.Abs(float64(vec.AngleBetween(dirs[i], dirs[i+1])))
		if start == 0 && turn > bendTolerance {
			start = i + 1
		}
		if start > 0 && turn < bendTolerance {
			end = i
			break
		}
	}
	if start == 0 || start >= len(path) {
		return nil, fmt.Errorf("%w: can't find bend start", ErrNoBend)
	}
	if end == 0 || end >= len(path) {
		return nil, fmt.Errorf("%w: can't find bend end", ErrNoBend)
	}
	return New(path[0], path[start], path[end], path[len(path)-1])
}

// SetSpacerCount lays count spacers evenly over the whole duct length
// at zero extension.
func (d *Duct) SetSpacerCount(count int) {
	if count <= 0 {
		d.spacer = nil
		return
	}
	d.spacer = make([]float64, count)
	if count == 1 {
		return
	}
	space := d.Length / float64(count-1)
	for i := range d.spacer {
		d.spacer[i] = space * float64(i)
	}
}

// SetSpacers replaces the spacer offsets, each a distance along the
// duct at zero extension.
func (d *Duct) SetSpacers(s []float64) {
	d.spacer = append([]float64(nil), s...)
}

// Spacers returns a copy of the spacer offsets.
func (d *Duct) Spacers() []float64 {
	return append([]float64(nil), d.spacer...)
}

// Move places every spacer for the duct extended by ext. It returns
// the spacer positions and their reference directions. Directions in
// the bend are combinations of U01 and U12 and are not normalized.
func (d *Duct) Move(ext float64) (positions, directions []geom.Vector) {
	positions = make([]geom.Vector, len(d.spacer))
	directions = make([]geom.Vector, len(d.spacer))
	half := ext / 2
	for i, s := range d.spacer {
		switch {
		case s < d.DM-half:
			positions[i] = d.Float.AddS(d.U01, s+ext)
			directions[i] = d.U01
		case d.Length-(d.DF+half) <= s:
			positions[i] = d.Fixed.AddS(d.U23, -(d.Length - s))
			directions[i] = d.U23
		default:
			t := (s - (d.DM - half)) * math.Pi / d.DB
			sin, cos := math.Sincos(t)
			positions[i] = d.BendStart.AddS(d.U01, d.R*sin+half).AddS(d.U12, d.R*(1-cos))
			directions[i] = d.U01.Scale(cos).AddS(d.U12, sin)
		}
	}
	return positions, directions
}

func (d *Duct) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CableDuct: %v -- %v >> %v -- %v\n", d.Float, d.BendStart, d.BendEnd, d.Fixed)
	fmt.Fprintf(&b, "  length: %g (= %g + %g + %g)\n", d.Length, d.DM, d.DB, d.DF)
	fmt.Fprintf(&b, "  directions: %v, %v, %v\n", d.U01, d.U12, d.U23)
	fmt.Fprintf(&b, "  spacer: %v", d.spacer)
	return b.String()
}
