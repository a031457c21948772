package cells

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

func assertPort(t *testing.T, c *component.Component, name string, x, y, orientation float64) {
	t.Helper()
	p, err := c.Port(name)
	require.NoError(t, err)
	assert.InDelta(t, x, p.Center.X, 1e-9, "%s x", name)
	assert.InDelta(t, y, p.Center.Y, 1e-9, "%s y", name)
	assert.InDelta(t, orientation, p.Orientation, 1e-9, "%s orientation", name)
}

func TestStraight(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.Straight(StraightConfig{})
	require.NoError(t, err)
	assertPort(t, c, "o1", 0, 0, 180)
	assertPort(t, c, "o2", 10, 0, 0)
	assert.Equal(t, geom.R(0, -0.25, 10, 0.25), c.BBox())

	again, err := lib.Straight(StraightConfig{Length: 10, XS: xsection.DefaultStrip()})
	require.NoError(t, err)
	assert.Same(t, c, again, "explicit defaults must hit the cache")

	_, err = lib.Straight(StraightConfig{Length: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter), "err = %v", err)
	assert.Equal(t, 1, lib.Cache.Len())
}

func TestBend(t *testing.T) {
	lib := NewLibrary(nil, nil)

	tests := []struct {
		name   string
		cfg    BendConfig
		x, y   float64
		orient float64
	}{
		{"circular", BendConfig{}, 10, 10, 90},
		{"circular clockwise", BendConfig{Angle: -90}, 10, -10, 270},
		{"circular 180", BendConfig{Angle: 180}, 0, 20, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := lib.Bend(tt.cfg)
			require.NoError(t, err)
			assertPort(t, c, "o1", 0, 0, 180)
			assertPort(t, c, "o2", tt.x, tt.y, tt.orient)
		})
	}
}

func TestBendEuler(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.Bend(BendConfig{Family: BendEuler})
	require.NoError(t, err)
	o2, err := c.Port("o2")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, o2.Orientation, 1e-9)
	// Symmetric bend: equal run and rise, wider than the circular one.
	assert.InDelta(t, o2.Center.X, o2.Center.Y, 1e-4)
	assert.Greater(t, o2.Center.X, 10.0)

	r, ok := c.InfoFloat("min_bend_radius")
	require.True(t, ok)
	assert.GreaterOrEqual(t, r, 10*(1-1e-4))

	circ, err := lib.Bend(BendConfig{Family: BendCircular})
	require.NoError(t, err)
	assert.NotSame(t, c, circ)
	assert.NotEqual(t, c.Name(), circ.Name())
}

func TestBendEulerArcFloorplan(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.Bend(BendConfig{Family: BendEuler, Radius: 20, ArcFloorplan: true})
	require.NoError(t, err)
	o2, err := c.Port("o2")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, o2.Center.X, 1e-6)
	assert.InDelta(t, 20.0, o2.Center.Y, 1e-6)
	r, ok := c.InfoFloat("min_bend_radius")
	require.True(t, ok)
	assert.Less(t, r, 20.0)

	// At the cross-section radius the tightened curve is too sharp.
	_, err = lib.Bend(BendConfig{Family: BendEuler, ArcFloorplan: true})
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("floorplan bend at radius 10 error = %v, want INVALID_PARAMETER", err)
	}
}

func TestBendErrors(t *testing.T) {
	lib := NewLibrary(nil, nil)
	tests := []struct {
		name string
		cfg  BendConfig
	}{
		{"unknown family", BendConfig{Family: "spline"}},
		{"below cross-section radius", BendConfig{Radius: 5}},
		{"p out of range", BendConfig{Family: BendEuler, P: 1.5}},
		{"angle out of range", BendConfig{Angle: 400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lib.Bend(tt.cfg)
			if !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("Bend(%+v) error = %v, want INVALID_PARAMETER", tt.cfg, err)
			}
		})
	}
	assert.Zero(t, lib.Cache.Len())
}

func TestBendS(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.BendS(BendSConfig{})
	require.NoError(t, err)
	assertPort(t, c, "o1", 0, 0, 180)
	assertPort(t, c, "o2", 11, 1.8, 0)
	_, ok := c.InfoFloat("min_bend_radius")
	assert.True(t, ok)

	_, err = lib.BendS(BendSConfig{Size: geom.Pt(10, 0)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
}

func TestSBendCircular(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.SBendCircular(SBendCircularConfig{Offset: -4})
	require.NoError(t, err)
	assertPort(t, c, "o1", 0, 0, 180)
	o2, err := c.Port("o2")
	require.NoError(t, err)
	assert.InDelta(t, -4.0, o2.Center.Y, 1e-9)
	assert.InDelta(t, 0.0, o2.Orientation, 1e-9)
}

func TestTaper(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.Taper(TaperConfig{Width2: 2})
	require.NoError(t, err)
	o1, _ := c.Port("o1")
	o2, _ := c.Port("o2")
	assert.InDelta(t, 0.5, o1.Width, 1e-12)
	assert.InDelta(t, 2.0, o2.Width, 1e-12)
	assert.InDelta(t, 10*(0.5+2)/2, c.Area(layer.WG), 1e-9)
}

func TestTransition(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.Transition(TransitionConfig{})
	require.NoError(t, err)
	o2, _ := c.Port("o2")
	assert.InDelta(t, 1.0, o2.Width, 1e-12)

	_, err = lib.Transition(TransitionConfig{To: xsection.Metal(10, layer.M1)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter), "err = %v", err)
}

func TestPad(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.Pad(PadConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3", "e4", "pad"}, c.PortNames())
	assertPort(t, c, "e1", -50, 0, 180)
	assertPort(t, c, "e2", 0, 50, 90)
	assertPort(t, c, "e3", 50, 0, 0)
	assertPort(t, c, "e4", 0, -50, 270)
	assert.Empty(t, c.Polygons(layer.PadOpen))

	open, err := lib.Pad(PadConfig{Opening: 10})
	require.NoError(t, err)
	assert.InDelta(t, 80.0*80.0, open.Area(layer.PadOpen), 1e-9)

	_, err = lib.Pad(PadConfig{Size: geom.Pt(10, 10), Opening: 5})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
}

func TestViaStack(t *testing.T) {
	lib := NewLibrary(nil, nil)
	c, err := lib.ViaStack(ViaStackConfig{})
	require.NoError(t, err)

	// (11 - 2·1 - 0.7)/2.7 → 3 pitches → 4 cuts per axis.
	assert.InDelta(t, 16*0.49, c.Area(layer.Via1), 1e-9)
	assert.InDelta(t, 16*0.49, c.Area(layer.Via2), 1e-9)
	for _, l := range []layer.Layer{layer.M1, layer.M2, layer.MTop} {
		assert.InDelta(t, 121.0, c.Area(l), 1e-9, "layer %s", l)
	}
	e1, err := c.Port("e1")
	require.NoError(t, err)
	assert.Equal(t, layer.MTop, e1.Layer)

	// The cut is one shared child.
	require.Len(t, c.References(), 2)
	assert.Equal(t, 4, c.References()[0].Columns())

	_, err = lib.ViaStack(ViaStackConfig{Size: geom.Pt(1, 1)})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
}

func TestTextCell(t *testing.T) {
	lib := NewLibrary(nil, nil)

	o, err := lib.Text(TextConfig{Text: "o"})
	require.NoError(t, err)
	assert.Len(t, o.Polygons(layer.Text), 1, "hole must be merged into the outline")

	left, err := lib.Text(TextConfig{Text: "II"})
	require.NoError(t, err)
	assert.Greater(t, left.BBox().Min.X, 0.0)
	assert.Len(t, left.Polygons(layer.Text), 2)

	right, err := lib.Text(TextConfig{Text: "II", Justify: JustifyRight})
	require.NoError(t, err)
	assert.Less(t, right.BBox().Max.X, 0.0)

	two, err := lib.Text(TextConfig{Text: "I\nI"})
	require.NoError(t, err)
	assert.Less(t, two.BBox().Min.Y, -lineSpacing*10+1)

	_, err = lib.Text(TextConfig{Text: "一"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter), "err = %v", err)
	_, err = lib.Text(TextConfig{Justify: "middle"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
}
