// Package port defines oriented, typed connection points and the selection
// and renaming helpers generators use to expose them.
package port

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
)

// Type classifies what may be connected to a port.
type Type string

const (
	Optical    Type = "optical"
	Electrical Type = "electrical"
	Placement  Type = "placement"
)

// Valid reports whether t is one of the known port types.
func (t Type) Valid() bool {
	switch t {
	case Optical, Electrical, Placement:
		return true
	}
	return false
}

// Prefix is the auto-rename prefix for t: o, e or p.
func (t Type) Prefix() string {
	switch t {
	case Electrical:
		return "e"
	case Placement:
		return "p"
	}
	return "o"
}

// Port is a named connection point. Orientation points away from the
// component body, in degrees within [0, 360).
type Port struct {
	Name        string      `json:"name"`
	Center      geom.Point  `json:"center"`
	Orientation float64     `json:"orientation"`
	Width       float64     `json:"width"`
	Layer       layer.Layer `json:"layer"`
	Type        Type        `json:"port_type"`
}

// Validate checks name, width and type.
func (p Port) Validate() error {
	if err := errors.ValidateName("port", p.Name); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("port width", p.Width); err != nil {
		return err
	}
	if err := errors.ValidateFinite("port orientation", p.Orientation); err != nil {
		return err
	}
	if !p.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "port %s has unknown type %q", p.Name, p.Type)
	}
	return nil
}

// Transform returns p placed by t.
func (p Port) Transform(t geom.Transform) Port {
	p.Center = t.Apply(p.Center)
	p.Orientation = t.ApplyAngle(p.Orientation)
	return p
}

// Move returns p translated by d.
func (p Port) Move(d geom.Point) Port {
	p.Center = p.Center.Add(d)
	return p
}

// Direction returns the unit vector p faces.
func (p Port) Direction() geom.Point { return geom.Dir(p.Orientation) }

// Faces reports whether p and q coincide within tol and point in opposite directions.
func (p Port) Faces(q Port, tol float64) bool {
	if !p.Center.Near(q.Center, tol) {
		return false
	}
	return math.Abs(math.Abs(geom.AngleDiff(p.Orientation, q.Orientation))-180) <= tol
}

func (p Port) String() string {
	return fmt.Sprintf("%s@%v/%g° w=%g %s %s", p.Name, p.Center, p.Orientation, p.Width, p.Layer, p.Type)
}

// Filter selects ports; zero fields match everything.
type Filter struct {
	Prefix      string
	Type        Type
	Layer       *layer.Layer
	Orientation *float64
	Width       *float64
}

// Match reports whether p passes f.
func (f Filter) Match(p Port) bool {
	if f.Prefix != "" && (len(p.Name) < len(f.Prefix) || p.Name[:len(f.Prefix)] != f.Prefix) {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Layer != nil && p.Layer != *f.Layer {
		return false
	}
	if f.Orientation != nil && math.Abs(geom.AngleDiff(p.Orientation, *f.Orientation)) > 1e-6 {
		return false
	}
	if f.Width != nil && math.Abs(p.Width-*f.Width) > 1e-6 {
		return false
	}
	return true
}

// Select returns the ports in ps that pass f, preserving order.
func Select(ps []Port, f Filter) []Port {
	var out []Port
	for _, p := range ps {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// side groups orientations for clockwise ordering: west, north, east, south.
func side(orientation float64) int {
	a := geom.NormalizeAngle(orientation + 45)
	switch {
	case a < 90:
		return 2 // east
	case a < 180:
		return 1 // north
	case a < 270:
		return 0 // west
	}
	return 3 // south
}

// SortClockwise orders ports clockwise starting at the bottom of the west side:
// west ports bottom to top, north ports left to right, east ports top to
// bottom, south ports right to left.
func SortClockwise(ps []Port) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		sa, sb := side(a.Orientation), side(b.Orientation)
		if sa != sb {
			return sa < sb
		}
		switch sa {
		case 0:
			return a.Center.Y < b.Center.Y
		case 1:
			return a.Center.X < b.Center.X
		case 2:
			return a.Center.Y > b.Center.Y
		}
		return a.Center.X > b.Center.X
	})
}

// AutoRename returns ps sorted clockwise and renamed per type: o1, o2, ...
// for optical, e1, ... for electrical, p1, ... for placement ports.
func AutoRename(ps []Port) []Port {
	out := make([]Port, len(ps))
	copy(out, ps)
	SortClockwise(out)
	counts := map[Type]int{}
	for i := range out {
		counts[out[i].Type]++
		out[i].Name = fmt.Sprintf("%s%d", out[i].Type.Prefix(), counts[out[i].Type])
	}
	return out
}
