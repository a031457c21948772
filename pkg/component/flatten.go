package component

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
)

// Flat is the fully resolved polygon set of a component hierarchy in
// absolute coordinates. Layers are sorted by number then datatype; within a
// layer, own polygons come first, then references in insertion order,
// depth-first. Every polygon is counter-clockwise.
type Flat struct {
	Layers   []layer.Layer
	Polygons map[layer.Layer][]geom.Polygon
}

// Flatten resolves the reference tree into absolute polygons. It is a pure
// read: repeated calls return identical coordinates.
func (c *Component) Flatten() *Flat {
	f := &Flat{Polygons: make(map[layer.Layer][]geom.Polygon)}
	c.flattenInto(f, geom.Identity, nil)
	for l := range f.Polygons {
		f.Layers = append(f.Layers, l)
	}
	layer.Sort(f.Layers)
	return f
}

func (c *Component) flattenInto(f *Flat, t geom.Transform, keep func(layer.Layer) bool) {
	for _, l := range c.OwnLayers() {
		if keep != nil && !keep(l) {
			continue
		}
		for _, pg := range c.polygons[l] {
			if t.IsIdentity() {
				f.Polygons[l] = append(f.Polygons[l], pg.Clone())
			} else {
				f.Polygons[l] = append(f.Polygons[l], pg.Transform(t))
			}
		}
	}
	for _, r := range c.refs {
		for _, pt := range r.Placements() {
			r.component.flattenInto(f, t.Compose(pt), keep)
		}
	}
}

// Count returns the number of polygons across all layers.
func (f *Flat) Count() int {
	n := 0
	for _, pgs := range f.Polygons {
		n += len(pgs)
	}
	return n
}

// Area returns the summed polygon area on l. Overlapping polygons are
// counted once each.
func (f *Flat) Area(l layer.Layer) float64 {
	var a float64
	for _, pg := range f.Polygons[l] {
		a += pg.Area()
	}
	return a
}

// Area returns the summed flattened polygon area on l.
func (c *Component) Area(l layer.Layer) float64 { return c.Flatten().Area(l) }

// Flattened returns a new component named name with the hierarchy resolved
// into own polygons and the same ports.
func (c *Component) Flattened(name string) (*Component, error) {
	return c.derive(name, nil, true)
}

// Extract returns a new flattened component with only the given layers.
// Ports on other layers are dropped.
func (c *Component) Extract(name string, layers ...layer.Layer) (*Component, error) {
	if len(layers) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "extract needs at least one layer")
	}
	set := make(map[layer.Layer]bool, len(layers))
	for _, l := range layers {
		set[l] = true
	}
	return c.derive(name, func(l layer.Layer) bool { return set[l] }, false)
}

// RemoveLayers returns a new flattened component without the given layers.
func (c *Component) RemoveLayers(name string, layers ...layer.Layer) (*Component, error) {
	drop := make(map[layer.Layer]bool, len(layers))
	for _, l := range layers {
		drop[l] = true
	}
	return c.derive(name, func(l layer.Layer) bool { return !drop[l] }, false)
}

func (c *Component) derive(name string, keep func(layer.Layer) bool, allPorts bool) (*Component, error) {
	f := &Flat{Polygons: make(map[layer.Layer][]geom.Polygon)}
	c.flattenInto(f, geom.Identity, keep)

	b := NewBuilder(name)
	ls := make([]layer.Layer, 0, len(f.Polygons))
	for l := range f.Polygons {
		ls = append(ls, l)
	}
	layer.Sort(ls)
	for _, l := range ls {
		if err := b.AddPolygons(l, f.Polygons[l]...); err != nil {
			return nil, err
		}
	}
	for _, p := range c.ports {
		if allPorts || keep == nil || keep(p.Layer) {
			if err := b.AddPort(p); err != nil {
				return nil, err
			}
		}
	}
	for k, v := range c.info {
		b.c.info[k] = v
	}
	return b.Finalize()
}

// HashGeometry returns a digest of the flattened geometry with coordinates
// rounded to precision. Polygon order within a layer does not affect it.
func (c *Component) HashGeometry(precision float64) string {
	if precision <= 0 {
		precision = 1e-4
	}
	f := c.Flatten()
	h := sha256.New()
	var buf [8]byte
	for _, l := range f.Layers {
		binary.LittleEndian.PutUint64(buf[:], uint64(l.Number))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(l.Datatype))
		h.Write(buf[:])

		sums := make([]string, 0, len(f.Polygons[l]))
		for _, pg := range f.Polygons[l] {
			ph := sha256.New()
			for _, p := range pg {
				binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(p.X/precision))))
				ph.Write(buf[:])
				binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(p.Y/precision))))
				ph.Write(buf[:])
			}
			sums = append(sums, string(ph.Sum(nil)))
		}
		sort.Strings(sums)
		for _, s := range sums {
			h.Write([]byte(s))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
