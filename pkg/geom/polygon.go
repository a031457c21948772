package geom

import (
	"math"
	"sort"
)

// Polygon is a closed simple polygon; the closing edge is implicit.
type Polygon []Point

// SignedArea returns the shoelace area, positive for counter-clockwise.
func (pg Polygon) SignedArea() float64 {
	n := len(pg)
	if n < 3 {
		return 0
	}
	var a float64
	for i := range pg {
		j := (i + 1) % n
		a += pg[i].X*pg[j].Y - pg[j].X*pg[i].Y
	}
	return a / 2
}

// Area returns the absolute enclosed area.
func (pg Polygon) Area() float64 { return math.Abs(pg.SignedArea()) }

// IsCCW reports whether the vertices run counter-clockwise.
func (pg Polygon) IsCCW() bool { return pg.SignedArea() > 0 }

// Bounds returns the bounding box of the vertices.
func (pg Polygon) Bounds() Rect {
	r := EmptyRect()
	for _, p := range pg {
		r = r.Extend(p)
	}
	return r
}

// Clone returns a copy that shares no storage with pg.
func (pg Polygon) Clone() Polygon {
	out := make(Polygon, len(pg))
	copy(out, pg)
	return out
}

// Reversed returns pg with the winding flipped while keeping the first vertex.
func (pg Polygon) Reversed() Polygon {
	n := len(pg)
	out := make(Polygon, n)
	if n == 0 {
		return out
	}
	out[0] = pg[0]
	for i := 1; i < n; i++ {
		out[i] = pg[n-i]
	}
	return out
}

// CCW returns pg normalized to counter-clockwise winding.
func (pg Polygon) CCW() Polygon {
	if pg.SignedArea() < 0 {
		return pg.Reversed()
	}
	return pg.Clone()
}

// Transform maps every vertex through t. Mirroring flips the winding, so the
// result is reversed in that case to preserve orientation.
func (pg Polygon) Transform(t Transform) Polygon {
	out := make(Polygon, len(pg))
	for i, p := range pg {
		out[i] = t.Apply(p)
	}
	if t.Mirror {
		return out.Reversed()
	}
	return out
}

// Round snaps every coordinate to a multiple of grid.
func (pg Polygon) Round(grid float64) Polygon {
	out := make(Polygon, len(pg))
	for i, p := range pg {
		out[i] = Point{Snap(p.X, grid), Snap(p.Y, grid)}
	}
	return out
}

// Contains reports whether p lies strictly inside pg (even-odd rule).
func (pg Polygon) Contains(p Point) bool {
	in := false
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

// Dedup drops consecutive vertices closer than tol, including the closing pair.
func (pg Polygon) Dedup(tol float64) Polygon {
	out := make(Polygon, 0, len(pg))
	for _, p := range pg {
		if len(out) > 0 && out[len(out)-1].Near(p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Near(out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

// MergeHoles joins holes into outer with zero-width bridges so the result is
// a single polygon without holes, as layout databases require. outer is made
// counter-clockwise and holes clockwise before bridging.
func MergeHoles(outer Polygon, holes []Polygon) Polygon {
	poly := outer.CCW()
	hs := make([]Polygon, 0, len(holes))
	for _, h := range holes {
		if len(h) < 3 {
			continue
		}
		if h.SignedArea() > 0 {
			h = h.Reversed()
		} else {
			h = h.Clone()
		}
		hs = append(hs, h)
	}
	// Bridge rightmost holes first so later bridges never cross earlier ones.
	sort.SliceStable(hs, func(i, j int) bool {
		return hs[i].Bounds().Max.X > hs[j].Bounds().Max.X
	})
	for _, h := range hs {
		poly = bridge(poly, h)
	}
	return poly
}

func bridge(outer, hole Polygon) Polygon {
	mi := 0
	for i, p := range hole {
		if p.X > hole[mi].X {
			mi = i
		}
	}
	m := hole[mi]

	// Closest edge hit by a ray from m towards +x.
	best := -1
	bestX := math.Inf(1)
	n := len(outer)
	for i := range outer {
		a, b := outer[i], outer[(i+1)%n]
		if (a.Y > m.Y) == (b.Y > m.Y) {
			continue
		}
		x := a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x >= m.X && x < bestX {
			bestX, best = x, i
		}
	}
	if best < 0 {
		return outer
	}
	hit := Point{bestX, m.Y}
	vi := best
	if outer[(best+1)%n].X > outer[best].X {
		vi = (best + 1) % n
	}
	v := outer[vi]

	// A reflex vertex inside the triangle (m, hit, v) would block the bridge;
	// take the one closest in angle to the ray instead.
	tri := Polygon{m, hit, v}
	bestAng := math.Inf(1)
	for i, p := range outer {
		if i == vi || !tri.Contains(p) {
			continue
		}
		prev, next := outer[(i+n-1)%n], outer[(i+1)%n]
		if p.Sub(prev).Cross(next.Sub(p)) >= 0 {
			continue
		}
		d := p.Sub(m)
		ang := math.Abs(math.Atan2(d.Y, d.X))
		if ang < bestAng {
			bestAng, vi = ang, i
		}
	}

	out := make(Polygon, 0, len(outer)+len(hole)+2)
	out = append(out, outer[:vi+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(mi+k)%len(hole)])
	}
	out = append(out, outer[vi])
	out = append(out, outer[vi+1:]...)
	return out
}
