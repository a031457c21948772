package connect

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/extrude"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

func straight(t *testing.T, name string, width float64) *component.Component {
	t.Helper()
	p, err := path.Straight(10, 2)
	require.NoError(t, err)
	c, err := extrude.Component(name, xsection.Strip(width, layer.WG, 10), p)
	require.NoError(t, err)
	return c
}

func bend(t *testing.T) *component.Component {
	t.Helper()
	p, err := path.Euler(10, 90, 0.5, 0)
	require.NoError(t, err)
	c, err := extrude.Component("bend", xsection.DefaultStrip(), p)
	require.NoError(t, err)
	return c
}

func TestConnectPlacesPortsFacing(t *testing.T) {
	a := straight(t, "a", 0.5)
	b := bend(t)

	tests := []struct {
		name   string
		moving *component.Component
		mport  string
		fixed  *component.Component
		fport  string
		opts   []Option
	}{
		{"straight to straight", a, "o1", straight(t, "b", 0.5), "o2", nil},
		{"straight to bend end", a, "o1", b, "o2", nil},
		{"bend to straight", b, "o1", a, "o2", nil},
		{"straight out of bend start", a, "o2", b, "o1", nil},
		{"mirrored bend", b, "o1", a, "o2", []Option{WithMirror()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Connect(tt.moving, tt.mport, tt.fixed, tt.fport, tt.opts...)
			require.NoError(t, err)

			src, _ := tt.moving.Port(tt.mport)
			dst, _ := tt.fixed.Port(tt.fport)
			placed := src.Transform(tr)

			assert.InDelta(t, dst.Center.X, placed.Center.X, 1e-9)
			assert.InDelta(t, dst.Center.Y, placed.Center.Y, 1e-9)
			assert.InDelta(t, 180.0, abs(geom.AngleDiff(placed.Orientation, dst.Orientation)), 1e-9)
			assert.True(t, placed.Faces(dst, 1e-9))
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestConnectManhattanExact(t *testing.T) {
	a := straight(t, "a", 0.5)
	b := straight(t, "b", 0.5)
	tr, err := Connect(a, "o1", b, "o2")
	require.NoError(t, err)
	assert.Equal(t, geom.Transform{Origin: geom.Pt(10, 0)}, tr)
}

func TestConnectToReferencePort(t *testing.T) {
	a := straight(t, "a", 0.5)
	top := component.NewBuilder("top")
	r, err := top.AddRef(a, geom.Transform{Origin: geom.Pt(3, 4), Rotation: 90})
	require.NoError(t, err)
	target, err := r.Port("o2")
	require.NoError(t, err)

	tr, err := ToPort(a, "o1", target)
	require.NoError(t, err)
	r2, err := top.AddRef(a, tr)
	require.NoError(t, err)
	placed, err := r2.Port("o1")
	require.NoError(t, err)
	assert.True(t, placed.Faces(target, 1e-9), "placed %v target %v", placed, target)
}

func TestConnectMissingPort(t *testing.T) {
	a := straight(t, "a", 0.5)
	b := straight(t, "b", 0.5)
	beforeA, beforeB := a.Flatten(), b.Flatten()
	portsA, portsB := a.Ports(), b.Ports()

	for _, tc := range []struct{ m, f string }{{"nope", "o2"}, {"o1", "nope"}} {
		_, err := Connect(a, tc.m, b, tc.f)
		if !errors.Is(err, errors.ErrCodePortNotFound) {
			t.Errorf("Connect(%s, %s) error = %v, want %v", tc.m, tc.f, err, errors.ErrCodePortNotFound)
		}
	}
	if !reflect.DeepEqual(beforeA, a.Flatten()) || !reflect.DeepEqual(beforeB, b.Flatten()) {
		t.Error("Connect mutated polygons")
	}
	if !reflect.DeepEqual(portsA, a.Ports()) || !reflect.DeepEqual(portsB, b.Ports()) {
		t.Error("Connect mutated ports")
	}
}

func TestConnectWidthMismatch(t *testing.T) {
	a := straight(t, "a", 0.5)
	wide := straight(t, "wide", 0.8)

	_, err := Connect(a, "o1", wide, "o2")
	if !errors.Is(err, errors.ErrCodePortMismatch) {
		t.Errorf("Connect() error = %v, want %v", err, errors.ErrCodePortMismatch)
	}
	if _, err := Connect(a, "o1", wide, "o2", WithWidthTolerance(0.5)); err != nil {
		t.Errorf("Connect(tolerant) error = %v", err)
	}
}

func TestCompatibleLayerAndType(t *testing.T) {
	o := port.Port{Name: "o1", Width: 1, Layer: layer.WG, Type: port.Optical}
	e := port.Port{Name: "e1", Width: 1, Layer: layer.M1, Type: port.Electrical}

	if err := Compatible(o, e); !errors.Is(err, errors.ErrCodePortMismatch) {
		t.Errorf("Compatible() error = %v, want %v", err, errors.ErrCodePortMismatch)
	}
	if err := Compatible(o, e, AllowLayerMismatch()); !errors.Is(err, errors.ErrCodePortMismatch) {
		t.Errorf("Compatible(allow layer) error = %v, want %v", err, errors.ErrCodePortMismatch)
	}
	if err := Compatible(o, e, AllowLayerMismatch(), AllowTypeMismatch()); err != nil {
		t.Errorf("Compatible(allow all) error = %v", err)
	}
}
