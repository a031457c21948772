package path

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
)

// Straight returns a segment of the given length along +x with npoints
// evenly spaced samples.
func Straight(length float64, npoints int) (*Path, error) {
	if err := errors.ValidatePositive("length", length); err != nil {
		return nil, err
	}
	if err := errors.ValidateMinInt("npoints", npoints, 2); err != nil {
		return nil, err
	}
	xs := floats.Span(make([]float64, npoints), 0, length)
	xs[npoints-1] = length
	pts := make([]geom.Point, npoints)
	for i, x := range xs {
		pts[i] = geom.Point{X: x}
	}
	return build(pts, make([]float64, npoints), nil), nil
}

// Arc returns a circular arc of the given radius sweeping angle degrees,
// positive turning left. npoints = 0 picks a count from DefaultPointSpacing.
// A zero angle yields a degenerate path at the origin.
func Arc(radius, angle float64, npoints int) (*Path, error) {
	if err := validateBend(radius, angle, npoints); err != nil {
		return nil, err
	}
	if angle == 0 {
		return Degenerate(geom.Point{}, 0), nil
	}
	if npoints == 0 {
		npoints = defaultPoints(radius * geom.Rad(math.Abs(angle)))
	}

	sign := 1.0
	if angle < 0 {
		sign = -1
	}
	ts := floats.Span(make([]float64, npoints), 0, angle)
	ts[npoints-1] = angle
	pts := make([]geom.Point, npoints)
	arc := make([]float64, npoints)
	for i, t := range ts {
		s, c := geom.SinCosDeg(math.Abs(t))
		pts[i] = geom.Point{X: radius * s, Y: sign * radius * (1 - c)}
		arc[i] = radius * geom.Rad(math.Abs(t))
	}
	return build(pts, ts, arc), nil
}

func validateBend(radius, angle float64, npoints int) error {
	if err := errors.ValidatePositive("radius", radius); err != nil {
		return err
	}
	if err := errors.ValidateRange("angle", angle, -360, 360); err != nil {
		return err
	}
	if npoints != 0 {
		return errors.ValidateMinInt("npoints", npoints, 2)
	}
	return nil
}

// clothoidOrder is the Gauss-Legendre order used per integration piece.
// Pieces are at most one sample interval long, which keeps the position
// error several orders of magnitude below EulerTolerance.
const clothoidOrder = 12

// EulerTolerance bounds the position error of Euler bends relative to radius.
const EulerTolerance = 1e-6

// Euler returns a curvature-continuous bend. Curvature grows linearly with
// arc length from 0 to 1/radius over the clothoid fraction p of the bend,
// stays at 1/radius through the circular middle, and mirrors back to 0.
// radius is the minimum radius of curvature, so p = 0 is exactly Arc.
func Euler(radius, angle, p float64, npoints int) (*Path, error) {
	return euler(radius, angle, p, npoints, false)
}

// EulerFloorplan returns the Euler bend scaled so its endpoints coincide
// with those of Arc(radius, angle). Its minimum radius of curvature is then
// below radius for any p > 0. Full turns have no arc floorplan and are
// rejected.
func EulerFloorplan(radius, angle, p float64, npoints int) (*Path, error) {
	if math.Abs(angle) == 360 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "a full turn has no arc floorplan")
	}
	return euler(radius, angle, p, npoints, true)
}

func euler(radius, angle, p float64, npoints int, floorplan bool) (*Path, error) {
	if err := validateBend(radius, angle, npoints); err != nil {
		return nil, err
	}
	if err := errors.ValidateRange("p", p, 0, 1); err != nil {
		return nil, err
	}
	if angle == 0 {
		return Degenerate(geom.Point{}, 0), nil
	}
	if p == 0 {
		return Arc(radius, angle, npoints)
	}

	// Unit clothoid (R0 = 1): heading θ(s) = s²/2 up to sp, where the
	// curvature reaches 1/Rp; then constant; then mirrored.
	alpha := geom.Rad(math.Abs(angle))
	sp := math.Sqrt(p * alpha)
	rp := 1 / sp
	s0 := 2*sp + rp*alpha*(1-p)
	scale := radius / rp

	heading := func(s float64) float64 {
		switch {
		case s <= sp:
			return s * s / 2
		case s >= s0-sp:
			d := s0 - s
			return alpha - d*d/2
		}
		return sp*sp/2 + (s-sp)/rp
	}

	if npoints == 0 {
		npoints = defaultPoints(s0 * scale)
	}
	ss := floats.Span(make([]float64, npoints), 0, s0)
	ss[npoints-1] = s0
	breaks := []float64{sp, s0 - sp}

	unit := make([]geom.Point, npoints)
	ang := make([]float64, npoints)
	var x, y float64
	for i, s := range ss {
		if i > 0 {
			dx, dy := integrateHeading(heading, ss[i-1], s, breaks)
			x += dx
			y += dy
		}
		unit[i] = geom.Point{X: x, Y: y}
		ang[i] = geom.Deg(heading(s))
	}
	if floorplan {
		scale = 2 * radius * math.Sin(alpha/2) / unit[npoints-1].Len()
	}

	pts := make([]geom.Point, npoints)
	arc := make([]float64, npoints)
	for i, q := range unit {
		pts[i] = q.Scale(scale)
		arc[i] = ss[i] * scale
	}

	path := build(pts, ang, arc)
	if angle < 0 {
		path = path.Transform(geom.MirrorX())
	}
	return path, nil
}

// integrateHeading returns ∫(cos θ, sin θ) ds over [a, b], split at any
// curvature breakpoints inside the interval.
func integrateHeading(heading func(float64) float64, a, b float64, breaks []float64) (dx, dy float64) {
	lo := a
	for _, br := range append(breaks, b) {
		if br <= lo || br > b {
			continue
		}
		dx += quad.Fixed(func(s float64) float64 { return math.Cos(heading(s)) }, lo, br, clothoidOrder, nil, 0)
		dy += quad.Fixed(func(s float64) float64 { return math.Sin(heading(s)) }, lo, br, clothoidOrder, nil, 0)
		lo = br
	}
	return dx, dy
}
