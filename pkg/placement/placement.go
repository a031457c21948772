// Package placement arranges references inside a component builder: port
// snapping, chains, grids and spacing along an axis.
//
// Everything here composes connect.ToPort with Builder.AddRef; no new
// geometry is created.
package placement

import (
	"fmt"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/connect"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/port"
)

// Place adds child to b so that its port childPort faces target. An empty
// name picks an automatic reference name.
func Place(b *component.Builder, name string, child *component.Component, childPort string, target port.Port, opts ...connect.Option) (*component.Reference, error) {
	t, err := connect.ToPort(child, childPort, target, opts...)
	if err != nil {
		return nil, err
	}
	return b.AddNamedRef(name, child, t)
}

// Step is one element of a chain: the component, the port joined to the
// previous element and the port the next element joins.
type Step struct {
	Name      string
	Component *component.Component
	In, Out   string
	Mirror    bool
}

// Chain places steps end to end: the first at start, every later one with
// its In port on the previous Out port. It returns the references in order.
func Chain(b *component.Builder, start geom.Transform, steps ...Step) ([]*component.Reference, error) {
	if len(steps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "chain needs at least one step")
	}
	refs := make([]*component.Reference, 0, len(steps))
	var prev port.Port
	for i, s := range steps {
		if s.Component == nil {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "chain step %d has no component", i)
		}
		var (
			r   *component.Reference
			err error
		)
		if i == 0 {
			t := start
			if s.Mirror {
				t = start.Compose(geom.MirrorX())
			}
			if _, err = s.Component.Port(s.In); err == nil {
				r, err = b.AddNamedRef(s.Name, s.Component, t)
			}
		} else {
			var opts []connect.Option
			if s.Mirror {
				opts = append(opts, connect.WithMirror())
			}
			r, err = Place(b, s.Name, s.Component, s.In, prev, opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("chain step %d (%s): %w", i, s.Component.Name(), err)
		}
		if prev, err = r.Port(s.Out); err != nil {
			return nil, fmt.Errorf("chain step %d (%s): %w", i, s.Component.Name(), err)
		}
		refs = append(refs, r)
	}
	return refs, nil
}

// Grid adds a columns×rows array reference of child at pitch.
func Grid(b *component.Builder, name string, child *component.Component, columns, rows int, pitch geom.Point) (*component.Reference, error) {
	return b.AddArrayRef(name, child, geom.Identity, columns, rows, pitch)
}

// Staggered adds columns×rows single references of child at pitch with
// every odd row shifted by stagger along x. References are returned row by
// row.
func Staggered(b *component.Builder, child *component.Component, columns, rows int, pitch geom.Point, stagger float64) ([]*component.Reference, error) {
	if err := errors.First(errors.ValidateMinInt("columns", columns, 1), errors.ValidateMinInt("rows", rows, 1)); err != nil {
		return nil, err
	}
	refs := make([]*component.Reference, 0, columns*rows)
	for row := 0; row < rows; row++ {
		dx := 0.0
		if row%2 == 1 {
			dx = stagger
		}
		for col := 0; col < columns; col++ {
			t := geom.Translate(float64(col)*pitch.X+dx, float64(row)*pitch.Y)
			r, err := b.AddRef(child, t)
			if err != nil {
				return nil, err
			}
			refs = append(refs, r)
		}
	}
	return refs, nil
}

// Axis selects the direction of Distribute.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Distribute adds children side by side along axis with spacing between
// their bounding boxes, starting at the origin. The other coordinate is
// left untouched.
func Distribute(b *component.Builder, axis Axis, spacing float64, children ...*component.Component) ([]*component.Reference, error) {
	if err := errors.ValidateFinite("spacing", spacing); err != nil {
		return nil, err
	}
	refs := make([]*component.Reference, 0, len(children))
	cursor := 0.0
	for i, c := range children {
		if c == nil {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "distribute child %d is nil", i)
		}
		bb := c.BBox()
		var t geom.Transform
		if !bb.IsEmpty() {
			if axis == AxisX {
				t = geom.Translate(cursor-bb.Min.X, 0)
				cursor += bb.Width() + spacing
			} else {
				t = geom.Translate(0, cursor-bb.Min.Y)
				cursor += bb.Height() + spacing
			}
		}
		r, err := b.AddRef(c, t)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, nil
}
