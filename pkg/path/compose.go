package path

import (
	"math"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
)

// Concat joins parts end to start without moving them. A position gap larger
// than ContinuityTolerance is always an error; a tangent jump larger than
// AngleTolerance is an error only when checkTangent is set.
func Concat(checkTangent bool, parts ...*Path) (*Path, error) {
	if len(parts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "concat needs at least one path")
	}
	var pts []geom.Point
	var ang, arc []float64
	for i, p := range parts {
		if p == nil || p.Len() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "path %d is empty", i)
		}
		shift := 0.0
		if i > 0 {
			prevEnd := pts[len(pts)-1]
			prevAng := ang[len(ang)-1]
			if gap := prevEnd.Dist(p.Start()); gap > ContinuityTolerance {
				return nil, errors.New(errors.ErrCodePathDiscontinuity,
					"gap of %.3g µm between path %d and %d", gap, i-1, i)
			}
			jump := geom.AngleDiff(p.ang[0], prevAng)
			if checkTangent && math.Abs(jump) > AngleTolerance {
				return nil, errors.New(errors.ErrCodePathDiscontinuity,
					"tangent jumps %.3g° between path %d and %d", jump, i-1, i)
			}
			// Keep angles unwrapped across the seam.
			shift = prevAng + jump - p.ang[0]
		}
		offset := 0.0
		if len(arc) > 0 {
			offset = arc[len(arc)-1]
		}
		pts = append(pts, p.pts...)
		for j, a := range p.ang {
			ang = append(ang, a+shift)
			arc = append(arc, offset+p.s[j])
		}
	}
	return build(pts, ang, arc), nil
}

// Chain places every part at the end of the previous one, rotated to follow
// its end tangent, and concatenates them. The result is continuous in
// position and tangent by construction.
func Chain(parts ...*Path) (*Path, error) {
	if len(parts) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "chain needs at least one path")
	}
	placed := make([]*Path, len(parts))
	var end geom.Point
	var endAng float64
	for i, p := range parts {
		if p == nil || p.Len() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "path %d is empty", i)
		}
		q := p
		if i > 0 {
			rot := endAng - p.ang[0]
			toOrigin := geom.Translate(-p.Start().X, -p.Start().Y)
			q = p.Transform(geom.Transform{Origin: end, Rotation: rot}.Compose(toOrigin))
			// Transform normalizes rotation; restore the exact unwrapped seam.
			d := endAng - q.ang[0]
			for j := range q.ang {
				q.ang[j] += d
			}
		}
		placed[i] = q
		end = q.End()
		endAng = q.ang[len(q.ang)-1]
	}
	return Concat(false, placed...)
}

// SBend returns a composite S-bend that shifts sideways by offset while
// keeping its heading: two opposite arcs of the given radius, with a straight
// vertical run between them when |offset| exceeds 2·radius.
func SBend(radius, offset float64, npoints int) (*Path, error) {
	if err := errors.ValidatePositive("radius", radius); err != nil {
		return nil, err
	}
	if err := errors.ValidateFinite("offset", offset); err != nil {
		return nil, err
	}
	if offset == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "sbend offset must be non-zero")
	}
	sign := 1.0
	if offset < 0 {
		sign = -1
	}
	dy := math.Abs(offset)

	if dy <= 2*radius {
		theta := geom.Deg(math.Acos(1 - dy/(2*radius)))
		a, err := Arc(radius, sign*theta, npoints)
		if err != nil {
			return nil, err
		}
		b, err := Arc(radius, -sign*theta, npoints)
		if err != nil {
			return nil, err
		}
		return Chain(a, b)
	}

	a, err := Arc(radius, sign*90, npoints)
	if err != nil {
		return nil, err
	}
	n := npoints
	if n == 0 {
		n = 2
	}
	s, err := Straight(dy-2*radius, n)
	if err != nil {
		return nil, err
	}
	b, err := Arc(radius, -sign*90, npoints)
	if err != nil {
		return nil, err
	}
	return Chain(a, s, b)
}
