package path

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
)

// cubic evaluates a cubic Bezier and its first two derivatives at t.
type cubic [4]geom.Point

func (c cubic) at(t float64) geom.Point {
	u := 1 - t
	return c[0].Scale(u * u * u).
		Add(c[1].Scale(3 * u * u * t)).
		Add(c[2].Scale(3 * u * t * t)).
		Add(c[3].Scale(t * t * t))
}

func (c cubic) d1(t float64) geom.Point {
	u := 1 - t
	return c[1].Sub(c[0]).Scale(3 * u * u).
		Add(c[2].Sub(c[1]).Scale(6 * u * t)).
		Add(c[3].Sub(c[2]).Scale(3 * t * t))
}

func (c cubic) d2(t float64) geom.Point {
	a := c[2].Sub(c[1].Scale(2)).Add(c[0])
	b := c[3].Sub(c[2].Scale(2)).Add(c[1])
	return a.Scale(6 * (1 - t)).Add(b.Scale(6 * t))
}

// curvature returns the signed curvature at t and the speed |B'(t)|.
func (c cubic) curvature(t float64) (k, speed float64) {
	v := c.d1(t)
	speed = v.Len()
	if speed < 1e-12 {
		return 0, speed
	}
	return v.Cross(c.d2(t)) / (speed * speed * speed), speed
}

func (c cubic) tangent(t float64) float64 {
	v := c.d1(t)
	if v.Len() < 1e-12 {
		// Coincident control points: the curve leaves along B''.
		v = c.d2(t)
		if t > 0.5 {
			v = v.Scale(-1)
		}
	}
	if v.Len() < 1e-12 {
		v = c[3].Sub(c[0])
	}
	return geom.Deg(math.Atan2(v.Y, v.X))
}

// Bezier samples the cubic Bezier with control points ctrl at npoints
// uniform parameter steps. npoints = 0 picks a count from the control
// polygon length.
func Bezier(ctrl [4]geom.Point, npoints int) (*Path, error) {
	for i, p := range ctrl {
		if err := errors.First(errors.ValidateFinite("control x", p.X), errors.ValidateFinite("control y", p.Y)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "control point %d", i)
		}
	}
	if ctrl[0].Near(ctrl[3], 1e-12) {
		return nil, errors.New(errors.ErrCodeGeometry, "bezier endpoints coincide")
	}
	if npoints == 0 {
		npoints = defaultPoints(ctrl[0].Dist(ctrl[1]) + ctrl[1].Dist(ctrl[2]) + ctrl[2].Dist(ctrl[3]))
	}
	if err := errors.ValidateMinInt("npoints", npoints, 2); err != nil {
		return nil, err
	}
	return sampleCubic(cubic(ctrl), npoints), nil
}

func sampleCubic(c cubic, npoints int) *Path {
	ts := floats.Span(make([]float64, npoints), 0, 1)
	pts := make([]geom.Point, npoints)
	ang := make([]float64, npoints)
	for i, t := range ts {
		pts[i] = c.at(t)
		a := c.tangent(t)
		if i > 0 {
			a = ang[i-1] + geom.AngleDiff(a, ang[i-1])
		}
		ang[i] = a
	}
	pts[0], pts[npoints-1] = c[0], c[3]
	return build(pts, ang, nil)
}

// ManhattanAngle snaps an angle to the nearest multiple of 90°. The angle is
// first normalized to [0, 360); exact ties (45°, 135°, ...) round up, so
// 45 → 90 and 315 → 0.
func ManhattanAngle(deg float64) float64 {
	return geom.NormalizeAngle(90 * math.Round(geom.NormalizeAngle(deg)/90))
}

// BezierOptions tunes BezierManhattan.
type BezierOptions struct {
	// NPoints is the sample count; 0 picks one from the curve length.
	NPoints int
	// MinRadius is the smallest radius of curvature the result may have;
	// 0 disables the check.
	MinRadius float64
}

// BezierManhattan returns a cubic Bezier from start to end whose endpoint
// tangents are the requested angles snapped to the nearest multiple of 90°.
// The control-point distances along those tangents are chosen to minimize the
// bending energy ∫κ² ds. When the best curve still violates MinRadius the
// call fails rather than returning a tighter bend.
func BezierManhattan(start, end geom.Point, startAngle, endAngle float64, opts BezierOptions) (*Path, error) {
	if err := errors.ValidateNonNegative("min radius", opts.MinRadius); err != nil {
		return nil, err
	}
	chord := end.Sub(start)
	L := chord.Len()
	if L < 1e-9 {
		return nil, errors.New(errors.ErrCodeGeometry, "bezier endpoints coincide")
	}
	u0 := geom.Dir(ManhattanAngle(startAngle))
	u1 := geom.Dir(ManhattanAngle(endAngle))

	ctrl := func(x []float64) cubic {
		d1 := L * math.Exp(x[0])
		d2 := L * math.Exp(x[1])
		return cubic{start, start.Add(u0.Scale(d1)), end.Sub(u1.Scale(d2)), end}
	}

	const samples = 96
	ts := floats.Span(make([]float64, samples), 0, 1)
	energy := func(x []float64) float64 {
		if math.Abs(x[0]) > 8 || math.Abs(x[1]) > 8 {
			return math.Inf(1)
		}
		c := ctrl(x)
		var e float64
		dt := 1.0 / (samples - 1)
		for _, t := range ts {
			k, speed := c.curvature(t)
			if speed < 1e-9 {
				return math.Inf(1)
			}
			e += k * k * speed * dt
		}
		return e
	}

	x0 := initialDistances(start, end, u0, u1)
	res, err := optimize.Minimize(optimize.Problem{Func: energy}, x0, &optimize.Settings{
		MajorIterations: 2000,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-12, Iterations: 50},
	}, &optimize.NelderMead{})
	if res == nil || math.IsInf(res.F, 0) || math.IsNaN(res.F) {
		return nil, errors.Wrap(errors.ErrCodeGeometry, err, "no manhattan bezier from %v to %v", start, end)
	}

	c := ctrl(res.X)
	npoints := opts.NPoints
	if npoints == 0 {
		npoints = defaultPoints(c[0].Dist(c[1]) + c[1].Dist(c[2]) + c[2].Dist(c[3]))
	}
	if err := errors.ValidateMinInt("npoints", npoints, 2); err != nil {
		return nil, err
	}
	p := sampleCubic(c, npoints)

	if opts.MinRadius > 0 {
		// Exact curvature on a dense grid, independent of the sample count.
		kmax := 0.0
		for _, t := range floats.Span(make([]float64, 512), 0, 1) {
			k, _ := c.curvature(t)
			kmax = math.Max(kmax, math.Abs(k))
		}
		if kmax*opts.MinRadius > 1+1e-9 {
			return nil, errors.New(errors.ErrCodeGeometry,
				"manhattan bezier from %v to %v needs radius %.4g, below minimum %g", start, end, 1/kmax, opts.MinRadius)
		}
	}
	return p, nil
}

// initialDistances seeds the optimizer in log-chord units. When the tangent
// lines intersect ahead of both ends, the cubic equivalent of the quadratic
// through that intersection is used; otherwise half the chord.
func initialDistances(start, end, u0, u1 geom.Point) []float64 {
	L := end.Dist(start)
	guess := []float64{math.Log(0.5), math.Log(0.5)}

	// Solve start + a·u0 = end - b·u1 for (a, b).
	A := mat.NewDense(2, 2, []float64{u0.X, u1.X, u0.Y, u1.Y})
	d := end.Sub(start)
	rhs := mat.NewVecDense(2, []float64{d.X, d.Y})
	var ab mat.VecDense
	if math.Abs(mat.Det(A)) < 1e-9 {
		return guess
	}
	if err := ab.SolveVec(A, rhs); err != nil {
		return guess
	}
	a, b := ab.AtVec(0), ab.AtVec(1)
	if a <= 1e-9 || b <= 1e-9 {
		return guess
	}
	return []float64{math.Log(2 * a / 3 / L), math.Log(2 * b / 3 / L)}
}
