// Package path generates arc-length parameterized sweep trajectories.
//
// A [Path] is an immutable sequence of samples, each a position plus the
// tangent direction at that position. Generators start at the origin heading
// along +x; use [Path.Transform] or [Chain] to place them.
//
// Tangent angles are stored unwrapped (a 270° bend ends at 270, not -90) so
// curvature can be recovered by finite differences; StartAngle and EndAngle
// report them normalized to [0, 360).
package path

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
)

const (
	// DefaultPointSpacing is the target sample spacing along curved paths, in µm.
	DefaultPointSpacing = 0.02

	// ContinuityTolerance is the largest position gap Concat accepts.
	ContinuityTolerance = 1e-6

	// AngleTolerance is the largest tangent jump, in degrees, Concat accepts
	// when tangent checking is enabled.
	AngleTolerance = 1e-3

	minDefaultPoints = 3
	maxDefaultPoints = 20000
)

// Path is an immutable sampled curve.
type Path struct {
	pts []geom.Point
	ang []float64
	s   []float64
}

// build assembles a path, dropping coincident consecutive samples so arc
// length is strictly increasing. arc holds the exact cumulative length of
// each sample when the generator knows it; nil sums chord lengths.
func build(pts []geom.Point, ang []float64, arc []float64) *Path {
	p := &Path{
		pts: make([]geom.Point, 0, len(pts)),
		ang: make([]float64, 0, len(ang)),
		s:   make([]float64, 0, len(pts)),
	}
	for i, q := range pts {
		if n := len(p.pts); n > 0 {
			d := q.Dist(p.pts[n-1])
			if d <= 1e-12 {
				// Keep the later tangent at a merge point.
				p.ang[n-1] = ang[i]
				continue
			}
			next := p.s[n-1] + d
			if arc != nil && arc[i]-arc[0] > p.s[n-1] {
				next = arc[i] - arc[0]
			}
			p.s = append(p.s, next)
		} else {
			p.s = append(p.s, 0)
		}
		p.pts = append(p.pts, q)
		p.ang = append(p.ang, ang[i])
	}
	return p
}

// Degenerate returns an explicitly requested zero-length path: a single
// sample at the given position and heading.
func Degenerate(at geom.Point, angle float64) *Path {
	return &Path{pts: []geom.Point{at}, ang: []float64{angle}, s: []float64{0}}
}

// FromPoints builds a path through a polyline. Interior tangents bisect the
// adjacent segments.
func FromPoints(pts []geom.Point) (*Path, error) {
	if len(pts) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "path needs at least 2 points, got %d", len(pts))
	}
	seg := make([]float64, len(pts)-1)
	for i := range seg {
		d := pts[i+1].Sub(pts[i])
		if d.Len() <= 1e-12 {
			return nil, errors.New(errors.ErrCodeGeometry, "coincident points at index %d", i)
		}
		seg[i] = geom.Deg(math.Atan2(d.Y, d.X))
	}
	ang := make([]float64, len(pts))
	ang[0] = seg[0]
	for i := 1; i < len(seg); i++ {
		seg[i] = seg[i-1] + geom.AngleDiff(seg[i], seg[i-1])
		ang[i] = (seg[i-1] + seg[i]) / 2
	}
	ang[len(pts)-1] = seg[len(seg)-1]
	return build(pts, ang, nil), nil
}

// Len returns the number of samples.
func (p *Path) Len() int { return len(p.pts) }

// Point returns sample i.
func (p *Path) Point(i int) geom.Point { return p.pts[i] }

// Angle returns the unwrapped tangent angle of sample i.
func (p *Path) Angle(i int) float64 { return p.ang[i] }

// ArcLength returns the arc length from the start to sample i.
func (p *Path) ArcLength(i int) float64 { return p.s[i] }

// Points returns a copy of the sample positions.
func (p *Path) Points() []geom.Point { return append([]geom.Point(nil), p.pts...) }

// Angles returns a copy of the unwrapped tangent angles.
func (p *Path) Angles() []float64 { return append([]float64(nil), p.ang...) }

// Length returns the total arc length.
func (p *Path) Length() float64 { return p.s[len(p.s)-1] }

func (p *Path) Start() geom.Point   { return p.pts[0] }
func (p *Path) End() geom.Point     { return p.pts[len(p.pts)-1] }
func (p *Path) StartAngle() float64 { return geom.NormalizeAngle(p.ang[0]) }
func (p *Path) EndAngle() float64   { return geom.NormalizeAngle(p.ang[len(p.ang)-1]) }

// IsDegenerate reports whether p has a single sample.
func (p *Path) IsDegenerate() bool { return len(p.pts) < 2 }

// Fraction returns the normalized arc length of sample i in [0, 1].
func (p *Path) Fraction(i int) float64 {
	L := p.Length()
	if L == 0 {
		return 0
	}
	return p.s[i] / L
}

// Curvatures returns the signed curvature (1/µm, positive turning left)
// at every sample, estimated from tangent differences.
func (p *Path) Curvatures() []float64 {
	n := len(p.pts)
	k := make([]float64, n)
	if n < 2 {
		return k
	}
	for i := range k {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		// Chord-corrected: exact for uniformly sampled circular arcs.
		ds := 0.0
		for j := lo; j < hi; j++ {
			ds += p.pts[j+1].Dist(p.pts[j])
		}
		if ds > 0 {
			m := float64(hi - lo)
			k[i] = 2 * m * math.Sin(geom.Rad(p.ang[hi]-p.ang[lo])/(2*m)) / ds
		}
	}
	return k
}

// MinRadius returns the smallest radius of curvature along p, +Inf if straight.
func (p *Path) MinRadius() float64 {
	k := p.Curvatures()
	if len(k) == 0 {
		return math.Inf(1)
	}
	abs := make([]float64, len(k))
	for i, v := range k {
		abs[i] = math.Abs(v)
	}
	kmax := floats.Max(abs)
	if kmax < 1e-12 {
		return math.Inf(1)
	}
	return 1 / kmax
}

// Bounds returns the bounding box of the samples.
func (p *Path) Bounds() geom.Rect { return geom.Polygon(p.pts).Bounds() }

// Transform returns p placed by t.
func (p *Path) Transform(t geom.Transform) *Path {
	pts := make([]geom.Point, len(p.pts))
	ang := make([]float64, len(p.ang))
	for i := range p.pts {
		pts[i] = t.Apply(p.pts[i])
		a := p.ang[i]
		if t.Mirror {
			a = -a
		}
		ang[i] = a + t.Rotation
	}
	return &Path{pts: pts, ang: ang, s: append([]float64(nil), p.s...)}
}

// Reverse returns p traversed from end to start.
func (p *Path) Reverse() *Path {
	n := len(p.pts)
	pts := make([]geom.Point, n)
	ang := make([]float64, n)
	arc := make([]float64, n)
	L := p.Length()
	for i := range p.pts {
		pts[n-1-i] = p.pts[i]
		ang[n-1-i] = p.ang[i] + 180
		arc[n-1-i] = L - p.s[i]
	}
	return build(pts, ang, arc)
}

// defaultPoints picks a sample count for a curve of the given length.
func defaultPoints(length float64) int {
	n := int(math.Ceil(length/DefaultPointSpacing)) + 1
	if n < minDefaultPoints {
		return minDefaultPoints
	}
	if n > maxDefaultPoints {
		return maxDefaultPoints
	}
	return n
}
