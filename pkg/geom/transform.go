package geom

import "math"

// Transform is a rigid placement. Apply order is fixed: mirror about the
// x axis first, then rotation about the origin, then translation by Origin.
//
// Any composition of transforms is again a Transform, and Compose is
// associative.
type Transform struct {
	Origin   Point   `json:"origin"`
	Rotation float64 `json:"rotation"`
	Mirror   bool    `json:"mirror,omitempty"`
}

// Identity is the transform that leaves every point in place.
var Identity = Transform{}

// Translate returns a pure translation.
func Translate(dx, dy float64) Transform { return Transform{Origin: Point{dx, dy}} }

// Rotate returns a pure rotation about the origin.
func Rotate(deg float64) Transform { return Transform{Rotation: NormalizeAngle(deg)} }

// MirrorX returns a reflection about the x axis (y -> -y).
func MirrorX() Transform { return Transform{Mirror: true} }

// IsIdentity reports whether t leaves every point in place.
func (t Transform) IsIdentity() bool {
	return !t.Mirror && NormalizeAngle(t.Rotation) == 0 && t.Origin == (Point{})
}

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	if t.Mirror {
		p.Y = -p.Y
	}
	return p.Rotate(t.Rotation).Add(t.Origin)
}

// ApplyVector maps a direction through t (no translation).
func (t Transform) ApplyVector(v Point) Point {
	if t.Mirror {
		v.Y = -v.Y
	}
	return v.Rotate(t.Rotation)
}

// ApplyAngle maps an orientation through t, normalized into [0, 360).
func (t Transform) ApplyAngle(deg float64) float64 {
	if t.Mirror {
		deg = -deg
	}
	return NormalizeAngle(deg + t.Rotation)
}

// Compose returns the transform equivalent to applying inner first and then t.
func (t Transform) Compose(inner Transform) Transform {
	rot := inner.Rotation
	if t.Mirror {
		rot = -rot
	}
	return Transform{
		Origin:   t.Apply(inner.Origin),
		Rotation: NormalizeAngle(t.Rotation + rot),
		Mirror:   t.Mirror != inner.Mirror,
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	// t(p) = R·M·p + o  =>  p = M·R⁻¹·(q - o) = R'·M·q + o'
	rot := -t.Rotation
	if t.Mirror {
		rot = t.Rotation
	}
	inv := Transform{Rotation: NormalizeAngle(rot), Mirror: t.Mirror}
	inv.Origin = inv.ApplyVector(t.Origin).Scale(-1)
	return inv
}

// Near reports whether t and u place every point within tol of each other
// over a unit neighbourhood of the origin.
func (t Transform) Near(u Transform, tol float64) bool {
	if t.Mirror != u.Mirror {
		return false
	}
	if math.Abs(AngleDiff(t.Rotation, u.Rotation)) > tol {
		return false
	}
	return t.Origin.Near(u.Origin, tol)
}
