package geom

import "math"

// Rect is an axis-aligned bounding box. The zero value is not empty; use
// EmptyRect for an accumulator.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// EmptyRect returns a rectangle that is the identity for Union.
func EmptyRect() Rect {
	return Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

// R builds a normalized rectangle from two corners.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{
		Min: Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max: Point{math.Max(x0, x1), math.Max(y0, y1)},
	}
}

// IsEmpty reports whether r contains no points.
func (r Rect) IsEmpty() bool { return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y }

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Center() Point   { return r.Min.Lerp(r.Max, 0.5) }

// Union returns the smallest rectangle containing r and s.
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	return Rect{
		Min: Point{math.Min(r.Min.X, s.Min.X), math.Min(r.Min.Y, s.Min.Y)},
		Max: Point{math.Max(r.Max.X, s.Max.X), math.Max(r.Max.Y, s.Max.Y)},
	}
}

// Extend grows r to include p.
func (r Rect) Extend(p Point) Rect {
	return r.Union(Rect{Min: p, Max: p})
}

// Pad grows r by d on every side.
func (r Rect) Pad(d float64) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{Min: r.Min.Sub(Point{d, d}), Max: r.Max.Add(Point{d, d})}
}

// Contains reports whether p lies inside r (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Corners returns the four corners counter-clockwise from Min.
func (r Rect) Corners() [4]Point {
	return [4]Point{r.Min, {r.Max.X, r.Min.Y}, r.Max, {r.Min.X, r.Max.Y}}
}

// Polygon returns r as a counter-clockwise polygon.
func (r Rect) Polygon() Polygon {
	c := r.Corners()
	return Polygon{c[0], c[1], c[2], c[3]}
}

// Transform returns the bounding box of r after t.
func (r Rect) Transform(t Transform) Rect {
	if r.IsEmpty() {
		return r
	}
	out := EmptyRect()
	for _, c := range r.Corners() {
		out = out.Extend(t.Apply(c))
	}
	return out
}
