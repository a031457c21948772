package cells

import (
	"math"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/placement"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// ManhattanRoute is a connection made of straights and 90° bends.
type ManhattanRoute struct {
	References []*component.Reference
	// Backbone holds the start, every corner and the end of the route.
	Backbone []geom.Point
	Length   float64
}

// RouteManhattan joins from and to with axis-aligned straights whose corners
// are rounded by 90° bends of the given family, all added to b. The ports
// must differ in orientation by a multiple of 90°.
//
// The backbone uses the fewest corners that leave every segment room for
// its bends: none for collinear facing ports, one for perpendicular ports,
// two for a Z or U turn, three or four for detours behind the start. A
// segment shorter than its bends need is an INVALID_PARAMETER error.
func (l *Library) RouteManhattan(b *component.Builder, from, to port.Port, xs xsection.CrossSection, family BendFamily) (ManhattanRoute, error) {
	defaultXS(&xs)
	if family == "" {
		family = BendCircular
	}
	left, err := l.Bend(BendConfig{Family: family, Angle: 90, XS: xs})
	if err != nil {
		return ManhattanRoute{}, err
	}
	right, err := l.Bend(BendConfig{Family: family, Angle: -90, XS: xs})
	if err != nil {
		return ManhattanRoute{}, err
	}
	corner, err := left.Port("o2")
	if err != nil {
		return ManhattanRoute{}, err
	}
	extent := corner.Center.X

	// Work in the frame where from sits at the origin pointing along +x.
	arrive := geom.NormalizeAngle(to.Orientation + 180 - from.Orientation)
	quarter := math.Round(arrive / 90)
	if math.Abs(arrive-quarter*90) > 1e-6 {
		return ManhattanRoute{}, errors.New(errors.ErrCodePortMismatch,
			"manhattan route needs ports at multiples of 90°, got %s at %g° and %s at %g°",
			from.Name, from.Orientation, to.Name, to.Orientation)
	}
	arrive = math.Mod(quarter*90, 360)
	target := to.Center.Sub(from.Center).Rotate(-from.Orientation)

	local := manhattanBackbone(target, arrive, extent)
	runs, err := straightRuns(local, extent)
	if err != nil {
		return ManhattanRoute{}, err
	}

	route := ManhattanRoute{Backbone: make([]geom.Point, len(local))}
	for i, q := range local {
		route.Backbone[i] = from.Center.Add(q.Rotate(from.Orientation))
	}

	at := from
	add := func(c *component.Component) error {
		r, err := placement.Place(b, "", c, "o1", at)
		if err != nil {
			return err
		}
		if at, err = r.Port("o2"); err != nil {
			return err
		}
		length, _ := c.InfoFloat("length")
		route.Length += length
		route.References = append(route.References, r)
		return nil
	}
	for i, run := range runs {
		if run > routeTolerance {
			s, err := l.Straight(StraightConfig{Length: run, XS: xs})
			if err != nil {
				return ManhattanRoute{}, err
			}
			if err := add(s); err != nil {
				return ManhattanRoute{}, err
			}
		}
		if i == len(runs)-1 {
			break
		}
		bend := left
		if turn(local[i], local[i+1], local[i+2]) < 0 {
			bend = right
		}
		if err := add(bend); err != nil {
			return ManhattanRoute{}, err
		}
	}
	if !at.Faces(to, routeTolerance) {
		return ManhattanRoute{}, errors.New(errors.ErrCodeGeometry,
			"manhattan route from %s misses %s: ends at %v", from.Name, to.Name, at.Center)
	}
	return route, nil
}

// manhattanBackbone returns the corner points from the origin (heading +x)
// to t, arriving while travelling along arrive, one of 0, 90, 180 or 270.
func manhattanBackbone(t geom.Point, arrive, e float64) []geom.Point {
	o := geom.Pt(0, 0)
	switch arrive {
	case 0:
		if math.Abs(t.Y) <= routeTolerance && t.X > routeTolerance {
			return []geom.Point{o, t}
		}
		if t.X >= 2*e-routeTolerance && math.Abs(t.Y) >= 2*e-routeTolerance {
			xm := t.X / 2
			return []geom.Point{o, geom.Pt(xm, 0), geom.Pt(xm, t.Y), t}
		}
		ym := math.Max(0, t.Y) + 2*e
		return []geom.Point{o, geom.Pt(e, 0), geom.Pt(e, ym), geom.Pt(t.X-e, ym), geom.Pt(t.X-e, t.Y), t}
	case 180:
		xm := math.Max(t.X, 0) + e
		return []geom.Point{o, geom.Pt(xm, 0), geom.Pt(xm, t.Y), t}
	}

	// Arriving along ±y: solve for +y and mirror back.
	s := 1.0
	if arrive == 270 {
		s = -1
	}
	ty := s * t.Y
	if t.X >= e-routeTolerance && ty >= e-routeTolerance {
		return []geom.Point{o, geom.Pt(t.X, 0), t}
	}
	ym := ty - e
	if ym < 2*e {
		ym = math.Min(ym, -2*e)
	}
	x1 := t.X - 2*e
	if x1 < e {
		x1 = math.Max(e, t.X+2*e)
	}
	return []geom.Point{o, geom.Pt(x1, 0), geom.Pt(x1, s*ym), geom.Pt(t.X, s*ym), t}
}

// straightRuns returns the straight length left on every backbone segment
// once its bends take extent e at each corner.
func straightRuns(pts []geom.Point, e float64) ([]float64, error) {
	n := len(pts) - 1
	runs := make([]float64, n)
	for i := 0; i < n; i++ {
		length := pts[i+1].Dist(pts[i])
		need := 0.0
		if i > 0 {
			need += e
		}
		if i < n-1 {
			need += e
		}
		if length < need-routeTolerance || (need == 0 && length <= routeTolerance) {
			return nil, errors.New(errors.ErrCodeInvalidParameter,
				"route segment %d is %.4g µm long, its bends need %.4g µm", i, length, need)
		}
		runs[i] = math.Max(length-need, 0)
	}
	return runs, nil
}

// turn is positive when the path a → b → c turns left at b.
func turn(a, b, c geom.Point) float64 {
	d1, d2 := b.Sub(a), c.Sub(b)
	return d1.X*d2.Y - d1.Y*d2.X
}
