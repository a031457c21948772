// Package extrude sweeps a cross-section along a path into polygons and
// ports.
package extrude

import (
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// inversionTolerance is how close 1 - κ·d may get to zero before an offset
// edge is considered folded over the path's centre of curvature.
const inversionTolerance = 1e-9

// radiusTolerance is the relative slack of WithMinRadiusCheck.
const radiusTolerance = 1e-4

// Result is the extruded geometry in the path's frame.
type Result struct {
	// Layers lists the layers with polygons, in strand order then bbox layers.
	Layers   []layer.Layer
	Polygons map[layer.Layer][]geom.Polygon
	Ports    []port.Port
	BBox     geom.Rect
}

type options struct {
	checkMinRadius bool
	skipBBox       bool
}

// Option configures Extrude.
type Option func(*options)

// WithMinRadiusCheck rejects paths tighter than the cross-section radius.
func WithMinRadiusCheck() Option { return func(o *options) { o.checkMinRadius = true } }

// WithoutBBox suppresses the cladding layers of the cross-section.
func WithoutBBox() Option { return func(o *options) { o.skipBBox = true } }

// Extrude sweeps xs along p. For every strand the edges at offset ± width/2
// along the local left normal are joined, right edge forward and left edge
// backward, into one counter-clockwise polygon. Strands with port names
// get a port at each end facing away from the body.
func Extrude(xs xsection.CrossSection, p *path.Path, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := xs.Validate(); err != nil {
		return nil, err
	}
	if p == nil || p.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "cannot extrude an empty path")
	}
	if o.checkMinRadius && xs.Radius > 0 {
		if err := errors.ValidateAtLeast("path radius", p.MinRadius(), xs.Radius*(1-radiusTolerance)); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Polygons: make(map[layer.Layer][]geom.Polygon),
		BBox:     geom.EmptyRect(),
	}
	add := func(l layer.Layer, pg geom.Polygon) {
		if _, ok := res.Polygons[l]; !ok {
			res.Layers = append(res.Layers, l)
		}
		res.Polygons[l] = append(res.Polygons[l], pg)
		res.BBox = res.BBox.Union(pg.Bounds())
	}

	n := p.Len()
	curv := p.Curvatures()
	for si, s := range xs.Sections {
		if n >= 2 {
			right := make([]geom.Point, n)
			left := make([]geom.Point, n)
			for i := 0; i < n; i++ {
				f := p.Fraction(i)
				w, off := s.WidthAt(f), s.OffsetAt(f)
				for _, d := range [2]float64{off - w/2, off + w/2} {
					if 1-curv[i]*d <= inversionTolerance {
						return nil, errors.New(errors.ErrCodeGeometry,
							"strand %d edge at offset %g folds over at sample %d (radius %.4g)", si, d, i, 1/curv[i])
					}
				}
				nrm := geom.Dir(p.Angle(i) + 90)
				right[i] = p.Point(i).Add(nrm.Scale(off - w/2))
				left[i] = p.Point(i).Add(nrm.Scale(off + w/2))
			}
			pg := make(geom.Polygon, 0, 2*n)
			pg = append(pg, right...)
			for i := n - 1; i >= 0; i-- {
				pg = append(pg, left[i])
			}
			pg = pg.Dedup(1e-12)
			if len(pg) >= 3 {
				add(s.Layer, pg.CCW())
			}
		}

		if !s.HasPorts() {
			continue
		}
		typ := xs.SectionPortType(si)
		for end, i := range [2]int{0, n - 1} {
			f := p.Fraction(i)
			orient := p.Angle(i)
			if end == 0 {
				orient += 180
			}
			res.Ports = append(res.Ports, port.Port{
				Name:        s.PortNames[end],
				Center:      p.Point(i).Add(geom.Dir(p.Angle(i) + 90).Scale(s.OffsetAt(f))),
				Orientation: geom.NormalizeAngle(orient),
				Width:       s.WidthAt(f),
				Layer:       s.Layer,
				Type:        typ,
			})
		}
	}

	if !o.skipBBox && !res.BBox.IsEmpty() {
		box := res.BBox.Pad(xs.BBoxPadding)
		for _, l := range xs.BBoxLayers {
			add(l, box.Polygon())
		}
	}
	return res, nil
}

// AddTo extrudes xs along p into b: polygons and ports.
func AddTo(b *component.Builder, xs xsection.CrossSection, p *path.Path, opts ...Option) (*Result, error) {
	res, err := Extrude(xs, p, opts...)
	if err != nil {
		return nil, err
	}
	for _, l := range res.Layers {
		if err := b.AddPolygons(l, res.Polygons[l]...); err != nil {
			return nil, err
		}
	}
	for _, pt := range res.Ports {
		if err := b.AddPort(pt); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Component extrudes xs along p into a finalized component named name,
// recording the path length as "length" info.
func Component(name string, xs xsection.CrossSection, p *path.Path, opts ...Option) (*component.Component, error) {
	b := component.NewBuilder(name)
	if _, err := AddTo(b, xs, p, opts...); err != nil {
		return nil, err
	}
	if err := b.SetInfo("length", p.Length()); err != nil {
		return nil, err
	}
	return b.Finalize()
}
