// Package component implements the immutable geometry aggregate every
// generator returns: per-layer polygons, named ports and transformed
// references to other components.
//
// Components are assembled with a [Builder] and frozen by
// [Builder.Finalize]. A finalized component is never mutated again, so it can
// be shared by any number of parents and goroutines. Because a reference can
// only point at an already finalized component, the reference graph is a DAG
// by construction.
package component

import (
	"sort"

	"github.com/google/uuid"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
)

// Component is a finalized, read-only geometry aggregate.
type Component struct {
	name     string
	uid      string
	polygons map[layer.Layer][]geom.Polygon
	ports    []port.Port
	portIdx  map[string]int
	refs     []*Reference
	refIdx   map[string]int
	info     map[string]any
	settings any
	bbox     geom.Rect
}

func newComponent(name string) *Component {
	return &Component{
		name:     name,
		uid:      uuid.NewString()[:8],
		polygons: make(map[layer.Layer][]geom.Polygon),
		portIdx:  make(map[string]int),
		refIdx:   make(map[string]int),
		info:     make(map[string]any),
		bbox:     geom.EmptyRect(),
	}
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// UID returns a short identifier unique to this instance.
func (c *Component) UID() string { return c.uid }

func (c *Component) String() string { return c.name }

// Settings returns a copy of the configuration the component was built
// from, if the generator recorded one.
func (c *Component) Settings() any { return cloneSettings(c.settings) }

// Info returns a copy of the component metadata.
func (c *Component) Info() map[string]any {
	out := make(map[string]any, len(c.info))
	for k, v := range c.info {
		out[k] = v
	}
	return out
}

// InfoFloat returns a numeric metadata entry.
func (c *Component) InfoFloat(key string) (float64, bool) {
	v, ok := c.info[key].(float64)
	return v, ok
}

// Port returns the named port.
func (c *Component) Port(name string) (port.Port, error) {
	i, ok := c.portIdx[name]
	if !ok {
		return port.Port{}, errors.New(errors.ErrCodePortNotFound, "port %q not found in %s (have %v)", name, c.name, c.PortNames())
	}
	return c.ports[i], nil
}

// HasPort reports whether the named port exists.
func (c *Component) HasPort(name string) bool {
	_, ok := c.portIdx[name]
	return ok
}

// Ports returns the ports in insertion order.
func (c *Component) Ports() []port.Port { return append([]port.Port(nil), c.ports...) }

// PortNames returns the port names in insertion order.
func (c *Component) PortNames() []string {
	out := make([]string, len(c.ports))
	for i, p := range c.ports {
		out[i] = p.Name
	}
	return out
}

// SelectPorts returns the ports passing f.
func (c *Component) SelectPorts(f port.Filter) []port.Port { return port.Select(c.ports, f) }

// References returns the direct references in insertion order.
func (c *Component) References() []*Reference { return append([]*Reference(nil), c.refs...) }

// Reference returns the direct reference with the given name.
func (c *Component) Reference(name string) (*Reference, error) {
	i, ok := c.refIdx[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "reference %q not found in %s", name, c.name)
	}
	return c.refs[i], nil
}

// Polygons returns a copy of the component's own polygons on l, excluding
// references.
func (c *Component) Polygons(l layer.Layer) []geom.Polygon {
	src := c.polygons[l]
	out := make([]geom.Polygon, len(src))
	for i, pg := range src {
		out[i] = pg.Clone()
	}
	return out
}

// OwnLayers returns the layers carrying the component's own polygons.
func (c *Component) OwnLayers() []layer.Layer {
	out := make([]layer.Layer, 0, len(c.polygons))
	for l := range c.polygons {
		out = append(out, l)
	}
	layer.Sort(out)
	return out
}

// Layers returns every layer used in the hierarchy, sorted.
func (c *Component) Layers() []layer.Layer {
	seen := map[layer.Layer]bool{}
	c.walk(func(n *Component) {
		for l := range n.polygons {
			seen[l] = true
		}
	})
	out := make([]layer.Layer, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	layer.Sort(out)
	return out
}

// BBox returns the union of own polygon extents and transformed reference
// extents.
func (c *Component) BBox() geom.Rect { return c.bbox }

// IsEmpty reports whether the component has no geometry at all.
func (c *Component) IsEmpty() bool { return c.bbox.IsEmpty() }

// Canonical identifies the component inside cache keys of parents that take
// it as a parameter.
func (c *Component) Canonical() any {
	return map[string]string{"component": c.name, "uid": c.uid}
}

// Children returns the distinct components referenced directly, in first
// reference order.
func (c *Component) Children() []*Component {
	seen := map[*Component]bool{}
	var out []*Component
	for _, r := range c.refs {
		if !seen[r.component] {
			seen[r.component] = true
			out = append(out, r.component)
		}
	}
	return out
}

// walk visits every distinct component of the hierarchy once, parents first.
func (c *Component) walk(fn func(*Component)) {
	seen := map[*Component]bool{}
	var visit func(*Component)
	visit = func(n *Component) {
		if seen[n] {
			return
		}
		seen[n] = true
		fn(n)
		for _, ch := range n.Children() {
			visit(ch)
		}
	}
	visit(c)
}

// Descendants returns every distinct component below c, sorted by name.
func (c *Component) Descendants() []*Component {
	var out []*Component
	c.walk(func(n *Component) {
		if n != c {
			out = append(out, n)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// AllPorts returns own ports plus the ports of references down to depth
// levels, transformed into c's frame. Nested ports are named
// "<reference>.<port>".
func (c *Component) AllPorts(depth int) []port.Port {
	out := c.Ports()
	if depth <= 0 {
		return out
	}
	for _, r := range c.refs {
		for _, p := range r.component.AllPorts(depth - 1) {
			p = p.Transform(r.transform)
			p.Name = r.name + "." + p.Name
			out = append(out, p)
		}
	}
	return out
}
