// Package geom provides the planar primitives shared by the layout kernel:
// points, axis-aligned rectangles, polygons and rigid transforms.
//
// All coordinates are in micrometres and all angles in degrees,
// counter-clockwise positive.
package geom

import (
	"fmt"
	"math"
)

// Point is a 2D position or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point             { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point             { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point         { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64           { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64         { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64                  { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64          { return p.Sub(q).Len() }
func (p Point) Lerp(q Point, t float64) Point { return p.Add(q.Sub(p).Scale(t)) }

// Rotate rotates p about the origin by deg degrees.
func (p Point) Rotate(deg float64) Point {
	s, c := SinCosDeg(deg)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// Near reports whether p and q are within tol of each other.
func (p Point) Near(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Dir returns the unit vector pointing at angle deg.
func Dir(deg float64) Point {
	s, c := SinCosDeg(deg)
	return Point{c, s}
}

// SinCosDeg returns sin and cos of an angle in degrees. Multiples of 90°
// are returned exactly so that manhattan placements stay on grid.
func SinCosDeg(deg float64) (sin, cos float64) {
	a := NormalizeAngle(deg)
	switch a {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(a * math.Pi / 180)
}

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 || a == 0 {
		// math.Mod(-1e-17, 360)+360 rounds to 360; also folds -0.
		return 0
	}
	return a
}

// AngleDiff returns the signed difference a-b folded into (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := NormalizeAngle(a - b)
	if d > 180 {
		d -= 360
	}
	return d
}

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Snap rounds v to the nearest multiple of grid.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}
