package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/extrude"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

func straight(t *testing.T, name string, length float64) *component.Component {
	t.Helper()
	p, err := path.Straight(length, 2)
	require.NoError(t, err)
	c, err := extrude.Component(name, xsection.DefaultStrip(), p)
	require.NoError(t, err)
	return c
}

func bend(t *testing.T) *component.Component {
	t.Helper()
	p, err := path.Arc(10, 90, 0)
	require.NoError(t, err)
	c, err := extrude.Component("bend", xsection.DefaultStrip(), p)
	require.NoError(t, err)
	return c
}

func TestPlace(t *testing.T) {
	s := straight(t, "s", 10)
	b := component.NewBuilder("top")
	r, err := Place(b, "", s, "o1", s.Ports()[1])
	require.NoError(t, err)
	assert.Equal(t, "s_1", r.Name())
	assert.Equal(t, geom.Translate(10, 0), r.Transform())

	_, err = Place(b, "", s, "missing", s.Ports()[1])
	assert.True(t, errors.Is(err, errors.ErrCodePortNotFound))
}

func TestChain(t *testing.T) {
	s := straight(t, "s", 10)
	bd := bend(t)
	b := component.NewBuilder("top")

	refs, err := Chain(b, geom.Identity,
		Step{Component: s, In: "o1", Out: "o2"},
		Step{Component: bd, In: "o1", Out: "o2"},
		Step{Component: s, In: "o1", Out: "o2"},
	)
	require.NoError(t, err)
	require.Len(t, refs, 3)

	end, err := refs[2].Port("o2")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, end.Center.X, 1e-9)
	assert.InDelta(t, 20.0, end.Center.Y, 1e-9)
	assert.InDelta(t, 90.0, end.Orientation, 1e-9)

	// Every joint is a pair of facing ports.
	for i := 1; i < len(refs); i++ {
		out, _ := refs[i-1].Port("o2")
		in, _ := refs[i].Port("o1")
		assert.True(t, in.Faces(out, 1e-9), "joint %d: %v vs %v", i, in, out)
	}
}

func TestChainMirror(t *testing.T) {
	s := straight(t, "s", 10)
	bd := bend(t)
	b := component.NewBuilder("top")
	refs, err := Chain(b, geom.Identity,
		Step{Component: s, In: "o1", Out: "o2"},
		Step{Component: bd, In: "o1", Out: "o2", Mirror: true},
	)
	require.NoError(t, err)
	end, _ := refs[1].Port("o2")
	assert.InDelta(t, -10.0, end.Center.Y, 1e-9)
	assert.InDelta(t, 270.0, end.Orientation, 1e-9)
}

func TestChainErrors(t *testing.T) {
	s := straight(t, "s", 10)
	b := component.NewBuilder("top")
	_, err := Chain(b, geom.Identity)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))

	_, err = Chain(b, geom.Identity, Step{Component: s, In: "o1", Out: "o3"})
	assert.True(t, errors.Is(err, errors.ErrCodePortNotFound), "err = %v", err)
}

func TestStaggered(t *testing.T) {
	s := straight(t, "s", 10)
	b := component.NewBuilder("top")
	refs, err := Staggered(b, s, 2, 2, geom.Pt(20, 5), 7)
	require.NoError(t, err)
	require.Len(t, refs, 4)
	want := []geom.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 7, Y: 5}, {X: 27, Y: 5}}
	for i, r := range refs {
		assert.Equal(t, want[i], r.Transform().Origin)
	}
}

func TestGrid(t *testing.T) {
	s := straight(t, "s", 10)
	b := component.NewBuilder("top")
	r, err := Grid(b, "arr", s, 3, 2, geom.Pt(15, 4))
	require.NoError(t, err)
	assert.Len(t, r.Placements(), 6)
	c, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, geom.R(0, -0.25, 40, 4.25), c.BBox())
}

func TestDistribute(t *testing.T) {
	a := straight(t, "a", 10)
	bb := straight(t, "b", 5)
	b := component.NewBuilder("top")
	refs, err := Distribute(b, AxisX, 2, a, bb, a)
	require.NoError(t, err)
	xs := []float64{0, 12, 19}
	for i, r := range refs {
		assert.InDelta(t, xs[i], r.Transform().Origin.X, 1e-12)
	}

	b = component.NewBuilder("col")
	refs, err = Distribute(b, AxisY, 1, a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, refs[0].Transform().Origin.Y, 1e-12)
	assert.InDelta(t, 1.75, refs[1].Transform().Origin.Y, 1e-12)
}
