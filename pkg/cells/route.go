package cells

import (
	"math"
	"sort"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/placement"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// routeTolerance is how far a routed end may land from its target port.
const routeTolerance = 1e-3

// Route is one placed connection between two ports.
type Route struct {
	Reference *component.Reference
	Length    float64
}

// RouteSBend joins from and to, which must face each other along a common
// axis, with a single Bezier S-bend (or a straight when they are aligned)
// added to b. The route leaves from through its o1 port.
func (l *Library) RouteSBend(b *component.Builder, from, to port.Port, xs xsection.CrossSection) (Route, error) {
	if math.Abs(geom.AngleDiff(to.Orientation, from.Orientation+180)) > 1e-6 {
		return Route{}, errors.New(errors.ErrCodePortMismatch,
			"sbend route needs opposite ports, got %s at %g° and %s at %g°", from.Name, from.Orientation, to.Name, to.Orientation)
	}
	// Offset of to in the frame where from points along +x.
	d := to.Center.Sub(from.Center).Rotate(-from.Orientation)
	if d.X <= routeTolerance {
		return Route{}, errors.New(errors.ErrCodeGeometry,
			"port %s lies behind port %s", to.Name, from.Name)
	}

	var (
		c   *component.Component
		err error
	)
	if math.Abs(d.Y) <= routeTolerance {
		c, err = l.Straight(StraightConfig{Length: d.X, XS: xs})
	} else {
		c, err = l.BendS(BendSConfig{Size: d, XS: xs})
	}
	if err != nil {
		return Route{}, err
	}
	r, err := placement.Place(b, "", c, "o1", from)
	if err != nil {
		return Route{}, err
	}
	end, err := r.Port("o2")
	if err != nil {
		return Route{}, err
	}
	if !end.Faces(to, routeTolerance) {
		return Route{}, errors.New(errors.ErrCodeGeometry, "sbend from %s misses %s: ends at %v", from.Name, to.Name, end.Center)
	}
	length, _ := c.InfoFloat("length")
	return Route{Reference: r, Length: length}, nil
}

// RouteBundleSBend routes every port of froms to the port of tos with the
// same rank, ranking both sets by their position across the direction of
// travel so the routes never cross.
func (l *Library) RouteBundleSBend(b *component.Builder, froms, tos []port.Port, xs xsection.CrossSection) ([]Route, error) {
	if len(froms) != len(tos) {
		return nil, errors.New(errors.ErrCodeInvalidParameter,
			"bundle needs as many start as end ports, got %d and %d", len(froms), len(tos))
	}
	if len(froms) == 0 {
		return nil, nil
	}
	heading := froms[0].Orientation
	across := func(p port.Port) float64 { return p.Center.Rotate(-heading).Y }
	rank := func(ps []port.Port) []port.Port {
		out := append([]port.Port(nil), ps...)
		sort.SliceStable(out, func(i, j int) bool { return across(out[i]) < across(out[j]) })
		return out
	}
	froms, tos = rank(froms), rank(tos)

	routes := make([]Route, 0, len(froms))
	for i := range froms {
		r, err := l.RouteSBend(b, froms[i], tos[i], xs)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}
