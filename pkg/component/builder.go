package component

import (
	"fmt"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
)

// Builder accumulates geometry for one component. It is not safe for
// concurrent use. After Finalize every mutator returns an
// IMMUTABLE_COMPONENT error.
type Builder struct {
	c       *Component
	frozen  bool
	aliases map[string]int
}

// NewBuilder starts a component with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{c: newComponent(name), aliases: make(map[string]int)}
}

// Name returns the name the component will be finalized with.
func (b *Builder) Name() string { return b.c.name }

func (b *Builder) mutable(op string) error {
	if b.frozen {
		return errors.New(errors.ErrCodeImmutableComponent, "%s: component %s is finalized", op, b.c.name)
	}
	return nil
}

// Rename changes the component name before finalization.
func (b *Builder) Rename(name string) error {
	if err := b.mutable("rename"); err != nil {
		return err
	}
	b.c.name = name
	return nil
}

// AddPolygon adds pg on layer l, normalized to counter-clockwise winding.
func (b *Builder) AddPolygon(l layer.Layer, pg geom.Polygon) error {
	if err := b.mutable("add polygon"); err != nil {
		return err
	}
	if len(pg) < 3 {
		return errors.New(errors.ErrCodeGeometry, "polygon on %s needs at least 3 vertices, got %d", l, len(pg))
	}
	for _, p := range pg {
		if err := errors.First(errors.ValidateFinite("x", p.X), errors.ValidateFinite("y", p.Y)); err != nil {
			return errors.Wrap(errors.ErrCodeGeometry, err, "polygon on %s", l)
		}
	}
	b.c.polygons[l] = append(b.c.polygons[l], pg.CCW())
	return nil
}

// AddPolygons adds every polygon in pgs on layer l.
func (b *Builder) AddPolygons(l layer.Layer, pgs ...geom.Polygon) error {
	for _, pg := range pgs {
		if err := b.AddPolygon(l, pg); err != nil {
			return err
		}
	}
	return nil
}

// AddRectangle adds r on layer l.
func (b *Builder) AddRectangle(l layer.Layer, r geom.Rect) error {
	if r.IsEmpty() || r.Width() == 0 || r.Height() == 0 {
		if err := b.mutable("add rectangle"); err != nil {
			return err
		}
		return errors.New(errors.ErrCodeGeometry, "rectangle on %s has zero area", l)
	}
	return b.AddPolygon(l, r.Polygon())
}

// AddRef places child with transform t under an automatic name
// "<child>_<n>".
func (b *Builder) AddRef(child *Component, t geom.Transform) (*Reference, error) {
	return b.AddArrayRef("", child, t, 1, 1, geom.Point{})
}

// AddNamedRef places child with transform t under the given name.
func (b *Builder) AddNamedRef(name string, child *Component, t geom.Transform) (*Reference, error) {
	return b.AddArrayRef(name, child, t, 1, 1, geom.Point{})
}

// AddArrayRef places a columns×rows grid of child. An empty name picks an
// automatic one.
func (b *Builder) AddArrayRef(name string, child *Component, t geom.Transform, columns, rows int, pitch geom.Point) (*Reference, error) {
	if err := b.mutable("add reference"); err != nil {
		return nil, err
	}
	if child == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "reference to nil component")
	}
	if child == b.c {
		return nil, errors.New(errors.ErrCodeReferenceCycle, "component %s cannot reference itself", b.c.name)
	}
	if err := errors.First(errors.ValidateMinInt("columns", columns, 1), errors.ValidateMinInt("rows", rows, 1)); err != nil {
		return nil, err
	}
	if name == "" {
		for {
			b.aliases[child.name]++
			name = fmt.Sprintf("%s_%d", child.name, b.aliases[child.name])
			if _, taken := b.c.refIdx[name]; !taken {
				break
			}
		}
	} else if err := errors.ValidateName("reference", name); err != nil {
		return nil, err
	}
	if _, taken := b.c.refIdx[name]; taken {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "reference name %q already used in %s", name, b.c.name)
	}
	r := &Reference{
		name:      name,
		component: child,
		transform: t,
		columns:   columns,
		rows:      rows,
		pitch:     pitch,
	}
	b.c.refIdx[name] = len(b.c.refs)
	b.c.refs = append(b.c.refs, r)
	return r, nil
}

// AddPort adds p. Port names are unique within a component.
func (b *Builder) AddPort(p port.Port) error {
	if err := b.mutable("add port"); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if _, taken := b.c.portIdx[p.Name]; taken {
		return errors.New(errors.ErrCodeInvalidParameter, "port %q already exists in %s", p.Name, b.c.name)
	}
	p.Orientation = geom.NormalizeAngle(p.Orientation)
	b.c.portIdx[p.Name] = len(b.c.ports)
	b.c.ports = append(b.c.ports, p)
	return nil
}

// AddPorts adds every port in ps with prefix prepended to its name.
func (b *Builder) AddPorts(ps []port.Port, prefix string) error {
	for _, p := range ps {
		p.Name = prefix + p.Name
		if err := b.AddPort(p); err != nil {
			return err
		}
	}
	return nil
}

// ExposePort copies a reference port onto the component under a new name.
func (b *Builder) ExposePort(r *Reference, name, as string) error {
	p, err := r.Port(name)
	if err != nil {
		return err
	}
	if as != "" {
		p.Name = as
	}
	return b.AddPort(p)
}

// Port returns a port added so far.
func (b *Builder) Port(name string) (port.Port, error) { return b.c.Port(name) }

// Ports returns the ports added so far.
func (b *Builder) Ports() []port.Port { return b.c.Ports() }

// SetInfo records a metadata entry.
func (b *Builder) SetInfo(key string, v any) error {
	if err := b.mutable("set info"); err != nil {
		return err
	}
	b.c.info[key] = v
	return nil
}

// SetSettings records the configuration the component is built from.
func (b *Builder) SetSettings(v any) error {
	if err := b.mutable("set settings"); err != nil {
		return err
	}
	b.c.settings = cloneSettings(v)
	return nil
}

// AutoRenamePorts renames all ports clockwise per type (o1, o2, ..., e1, ...).
func (b *Builder) AutoRenamePorts() error {
	if err := b.mutable("rename ports"); err != nil {
		return err
	}
	b.c.ports = port.AutoRename(b.c.ports)
	b.c.portIdx = make(map[string]int, len(b.c.ports))
	for i, p := range b.c.ports {
		b.c.portIdx[p.Name] = i
	}
	return nil
}

// AddPinMarkers draws a rectangle of the given length just inside every
// port, port-width wide, on layer l.
func (b *Builder) AddPinMarkers(l layer.Layer, length float64) error {
	if err := b.mutable("add pins"); err != nil {
		return err
	}
	if err := errors.ValidatePositive("pin length", length); err != nil {
		return err
	}
	for _, p := range b.c.ports {
		if p.Width == 0 {
			continue
		}
		d := p.Direction()
		n := geom.Point{X: -d.Y, Y: d.X}.Scale(p.Width / 2)
		in := p.Center.Sub(d.Scale(length))
		pg := geom.Polygon{p.Center.Sub(n), p.Center.Add(n), in.Add(n), in.Sub(n)}
		if err := b.AddPolygon(l, pg); err != nil {
			return err
		}
	}
	return nil
}

// Finalize freezes the component and returns it. Calling Finalize again
// returns the same component.
func (b *Builder) Finalize() (*Component, error) {
	if b.frozen {
		return b.c, nil
	}
	if err := errors.ValidateName("component", b.c.name); err != nil {
		return nil, err
	}
	bbox := geom.EmptyRect()
	for _, pgs := range b.c.polygons {
		for _, pg := range pgs {
			bbox = bbox.Union(pg.Bounds())
		}
	}
	for _, r := range b.c.refs {
		bbox = bbox.Union(r.BBox())
	}
	b.c.bbox = bbox
	b.frozen = true
	return b.c, nil
}
