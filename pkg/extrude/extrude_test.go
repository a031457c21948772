package extrude

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

func TestStraightRectangle(t *testing.T) {
	p, err := path.Straight(10, 2)
	require.NoError(t, err)
	xs := xsection.Strip(0.5, layer.WG, 10)

	res, err := Extrude(xs, p)
	require.NoError(t, err)

	pgs := res.Polygons[layer.WG]
	require.Len(t, pgs, 1)
	want := geom.Polygon{{X: 0, Y: -0.25}, {X: 10, Y: -0.25}, {X: 10, Y: 0.25}, {X: 0, Y: 0.25}}
	assert.Equal(t, want, pgs[0])

	require.Len(t, res.Ports, 2)
	o1, o2 := res.Ports[0], res.Ports[1]
	assert.Equal(t, "o1", o1.Name)
	assert.Equal(t, geom.Pt(0, 0), o1.Center)
	assert.Equal(t, 180.0, o1.Orientation)
	assert.Equal(t, "o2", o2.Name)
	assert.Equal(t, geom.Pt(10, 0), o2.Center)
	assert.Equal(t, 0.0, o2.Orientation)
	for _, pt := range res.Ports {
		assert.Equal(t, 0.5, pt.Width)
		assert.Equal(t, layer.WG, pt.Layer)
		assert.Equal(t, port.Optical, pt.Type)
	}
}

func TestAreaConservation(t *testing.T) {
	arc, err := path.Arc(10, 90, 0)
	require.NoError(t, err)
	euler, err := path.Euler(10, 120, 0.5, 0)
	require.NoError(t, err)
	sbend, err := path.SBend(20, 8, 0)
	require.NoError(t, err)
	straight, err := path.Straight(15, 20)
	require.NoError(t, err)

	tests := []struct {
		name string
		xs   xsection.CrossSection
		p    *path.Path
		want func(L float64) float64
	}{
		{"straight", xsection.DefaultStrip(), straight, func(L float64) float64 { return 0.5 * L }},
		{"arc", xsection.DefaultStrip(), arc, func(L float64) float64 { return 0.5 * L }},
		{"euler", xsection.DefaultStrip().WithWidth(1.2), euler, func(L float64) float64 { return 1.2 * L }},
		{"sbend", xsection.DefaultStrip(), sbend, func(L float64) float64 { return 0.5 * L }},
		{"taper", xsection.DefaultStrip().Taper(0.5, 2), straight, func(L float64) float64 { return 1.25 * L }},
		{"tapered arc", xsection.DefaultStrip().Taper(0.4, 1), arc, func(L float64) float64 { return 0.7 * L }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extrude(tt.xs, tt.p)
			require.NoError(t, err)
			var area float64
			for _, pg := range res.Polygons[tt.xs.Layer()] {
				area += pg.Area()
			}
			want := tt.want(tt.p.Length())
			assert.InDelta(t, want, area, want*1e-4)
		})
	}
}

func TestMultiSectionArea(t *testing.T) {
	xs := xsection.Rib(0.5, 6, layer.WG, layer.Slab90, 10)
	p, _ := path.Straight(10, 2)
	res, err := Extrude(xs, p)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, res.Polygons[layer.WG][0].Area(), 1e-12)
	assert.InDelta(t, 60.0, res.Polygons[layer.Slab90][0].Area(), 1e-12)
	assert.Len(t, res.Ports, 2, "only the core strand has ports")
}

func TestOffsetStrand(t *testing.T) {
	xs := xsection.DefaultStrip().Add(xsection.Section{
		Width: 1, Offset: 2, Layer: layer.Heater, PortNames: [2]string{"e1", "e2"}, PortType: port.Electrical,
	})
	p, _ := path.Straight(10, 2)
	res, err := Extrude(xs, p)
	require.NoError(t, err)

	bb := res.Polygons[layer.Heater][0].Bounds()
	assert.InDelta(t, 1.5, bb.Min.Y, 1e-12)
	assert.InDelta(t, 2.5, bb.Max.Y, 1e-12)
	require.Len(t, res.Ports, 4)
	assert.Equal(t, geom.Pt(0, 2), res.Ports[2].Center)
	assert.Equal(t, port.Electrical, res.Ports[2].Type)
}

func TestMirroredOffsets(t *testing.T) {
	xs := xsection.DefaultStrip().Add(xsection.Section{Width: 1, Offset: 2, Layer: layer.Slab90})
	m := xs.Mirror()
	p, _ := path.Straight(10, 2)
	res, err := Extrude(m, p)
	require.NoError(t, err)
	bb := res.Polygons[layer.Slab90][0].Bounds()
	assert.InDelta(t, -2.5, bb.Min.Y, 1e-12)
	assert.InDelta(t, -1.5, bb.Max.Y, 1e-12)
}

func TestTransitionPorts(t *testing.T) {
	x1 := xsection.Strip(0.5, layer.WG, 10)
	x2 := xsection.Strip(2, layer.WG, 10)
	tr, err := xsection.Transition(x1, x2)
	require.NoError(t, err)
	p, _ := path.Straight(10, 2)
	res, err := Extrude(tr, p)
	require.NoError(t, err)

	assert.Equal(t, 0.5, res.Ports[0].Width)
	assert.Equal(t, 2.0, res.Ports[1].Width)
}

func TestInvertedOffset(t *testing.T) {
	arc, err := path.Arc(1, 90, 50)
	require.NoError(t, err)
	_, err = Extrude(xsection.Strip(3, layer.WG, 0), arc)
	if !errors.Is(err, errors.ErrCodeGeometry) {
		t.Errorf("Extrude() error = %v, want %v", err, errors.ErrCodeGeometry)
	}
}

func TestMinRadiusCheck(t *testing.T) {
	arc, _ := path.Arc(5, 90, 50)
	xs := xsection.DefaultStrip()

	_, err := Extrude(xs, arc, WithMinRadiusCheck())
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Extrude(check) error = %v, want %v", err, errors.ErrCodeInvalidParameter)
	}
	if _, err := Extrude(xs, arc); err != nil {
		t.Errorf("Extrude(no check) error = %v", err)
	}
}

func TestBBoxLayer(t *testing.T) {
	xs := xsection.DefaultStrip().WithBBox(2, layer.WGClad, layer.DevRec)
	p, _ := path.Straight(10, 2)
	res, err := Extrude(xs, p)
	require.NoError(t, err)

	for _, l := range []layer.Layer{layer.WGClad, layer.DevRec} {
		bb := res.Polygons[l][0].Bounds()
		assert.Equal(t, geom.R(-2, -2.25, 12, 2.25), bb)
	}
	assert.Equal(t, []layer.Layer{layer.WG, layer.WGClad, layer.DevRec}, res.Layers)

	res, err = Extrude(xs, p, WithoutBBox())
	require.NoError(t, err)
	assert.Len(t, res.Layers, 1)
}

func TestDegeneratePath(t *testing.T) {
	res, err := Extrude(xsection.DefaultStrip(), path.Degenerate(geom.Pt(1, 1), 0))
	require.NoError(t, err)
	assert.Empty(t, res.Polygons)
	require.Len(t, res.Ports, 2)
	assert.Equal(t, res.Ports[0].Center, res.Ports[1].Center)
}

func TestInvalidCrossSection(t *testing.T) {
	p, _ := path.Straight(10, 2)
	_, err := Extrude(xsection.Strip(-1, layer.WG, 10), p)
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Extrude() error = %v, want %v", err, errors.ErrCodeInvalidParameter)
	}
}

func TestComponent(t *testing.T) {
	arc, _ := path.Euler(10, 90, 0.5, 0)
	c, err := Component("bend", xsection.DefaultStrip(), arc)
	require.NoError(t, err)

	o2, err := c.Port("o2")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, o2.Orientation, 1e-9)
	assert.True(t, o2.Center.Near(arc.End(), 1e-12))

	L, ok := c.InfoFloat("length")
	assert.True(t, ok)
	assert.InDelta(t, arc.Length(), L, 0)
	assert.False(t, math.IsInf(c.BBox().Width(), 0))
}
