package component

import (
	"fmt"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/port"
)

// Reference places a shared, read-only child component. An array reference
// repeats the child on a Columns×Rows grid with the given pitch, measured in
// the child's frame before the transform is applied.
type Reference struct {
	name      string
	component *Component
	transform geom.Transform
	columns   int
	rows      int
	pitch     geom.Point
}

func (r *Reference) Name() string              { return r.name }
func (r *Reference) Component() *Component     { return r.component }
func (r *Reference) Transform() geom.Transform { return r.transform }
func (r *Reference) Columns() int              { return r.columns }
func (r *Reference) Rows() int                 { return r.rows }
func (r *Reference) Pitch() geom.Point         { return r.pitch }

// IsArray reports whether r repeats its child more than once.
func (r *Reference) IsArray() bool { return r.columns*r.rows > 1 }

// Placements returns the transform of every repetition, row-major.
func (r *Reference) Placements() []geom.Transform {
	out := make([]geom.Transform, 0, r.columns*r.rows)
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.columns; col++ {
			out = append(out, r.placement(col, row))
		}
	}
	return out
}

func (r *Reference) placement(col, row int) geom.Transform {
	if col == 0 && row == 0 {
		return r.transform
	}
	off := geom.Translate(float64(col)*r.pitch.X, float64(row)*r.pitch.Y)
	return r.transform.Compose(off)
}

// Port returns the named child port placed by the first repetition.
func (r *Reference) Port(name string) (port.Port, error) {
	p, err := r.component.Port(name)
	if err != nil {
		return port.Port{}, errors.Wrap(errors.ErrCodePortNotFound, err, "reference %s", r.name)
	}
	return p.Transform(r.transform), nil
}

// ArrayPort returns the named child port of the repetition at (col, row).
func (r *Reference) ArrayPort(name string, col, row int) (port.Port, error) {
	if col < 0 || col >= r.columns || row < 0 || row >= r.rows {
		return port.Port{}, errors.New(errors.ErrCodeInvalidParameter,
			"array index (%d, %d) outside %dx%d", col, row, r.columns, r.rows)
	}
	p, err := r.component.Port(name)
	if err != nil {
		return port.Port{}, errors.Wrap(errors.ErrCodePortNotFound, err, "reference %s", r.name)
	}
	return p.Transform(r.placement(col, row)), nil
}

// Ports returns every child port placed by the first repetition. For arrays
// use ArrayPorts.
func (r *Reference) Ports() []port.Port {
	ps := r.component.ports
	out := make([]port.Port, len(ps))
	for i, p := range ps {
		out[i] = p.Transform(r.transform)
	}
	return out
}

// ArrayPorts returns the child ports of every repetition, renamed
// "<port>_<row>_<col>".
func (r *Reference) ArrayPorts() []port.Port {
	var out []port.Port
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.columns; col++ {
			t := r.placement(col, row)
			for _, p := range r.component.ports {
				p = p.Transform(t)
				p.Name = fmt.Sprintf("%s_%d_%d", p.Name, row+1, col+1)
				out = append(out, p)
			}
		}
	}
	return out
}

// BBox returns the placed extent of all repetitions.
func (r *Reference) BBox() geom.Rect {
	out := geom.EmptyRect()
	child := r.component.BBox()
	for _, t := range r.Placements() {
		out = out.Union(child.Transform(t))
	}
	return out
}
