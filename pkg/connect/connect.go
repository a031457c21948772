// Package connect computes the placement that snaps one component's port
// onto another port so the two face each other.
//
// Connecting never mutates either component: it returns a transform the
// caller applies when adding a reference.
package connect

import (
	"math"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/port"
)

// DefaultWidthTolerance is the largest port width difference accepted by default.
const DefaultWidthTolerance = 1e-3

type options struct {
	widthTol   float64
	allowLayer bool
	allowType  bool
	mirror     bool
}

// Option configures a connection.
type Option func(*options)

// WithWidthTolerance sets the accepted port width difference.
func WithWidthTolerance(tol float64) Option { return func(o *options) { o.widthTol = tol } }

// AllowLayerMismatch accepts ports on different layers.
func AllowLayerMismatch() Option { return func(o *options) { o.allowLayer = true } }

// AllowTypeMismatch accepts ports of different types.
func AllowTypeMismatch() Option { return func(o *options) { o.allowType = true } }

// WithMirror mirrors the moving component before rotating it into place.
func WithMirror() Option { return func(o *options) { o.mirror = true } }

// Connect returns the transform placing moving so that its port movingPort
// sits on fixed's port fixedPort, facing it. fixedPort is taken in fixed's
// own frame.
func Connect(moving *component.Component, movingPort string, fixed *component.Component, fixedPort string, opts ...Option) (geom.Transform, error) {
	if moving == nil || fixed == nil {
		return geom.Transform{}, errors.New(errors.ErrCodeInvalidParameter, "connect needs two components")
	}
	target, err := fixed.Port(fixedPort)
	if err != nil {
		return geom.Transform{}, err
	}
	return ToPort(moving, movingPort, target, opts...)
}

// ToPort returns the transform placing moving so that its port movingPort
// sits on target, facing it. target is typically a placed reference port.
func ToPort(moving *component.Component, movingPort string, target port.Port, opts ...Option) (geom.Transform, error) {
	o := options{widthTol: DefaultWidthTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	if moving == nil {
		return geom.Transform{}, errors.New(errors.ErrCodeInvalidParameter, "connect needs a moving component")
	}
	src, err := moving.Port(movingPort)
	if err != nil {
		return geom.Transform{}, err
	}
	if err := Compatible(src, target, opts...); err != nil {
		return geom.Transform{}, err
	}
	return Align(src, target, o.mirror), nil
}

// Compatible checks that two ports may be joined.
func Compatible(a, b port.Port, opts ...Option) error {
	o := options{widthTol: DefaultWidthTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	if math.Abs(a.Width-b.Width) > o.widthTol {
		return errors.New(errors.ErrCodePortMismatch, "port %s width %g does not match %s width %g", a.Name, a.Width, b.Name, b.Width)
	}
	if !o.allowLayer && a.Layer != b.Layer {
		return errors.New(errors.ErrCodePortMismatch, "port %s layer %s does not match %s layer %s", a.Name, a.Layer, b.Name, b.Layer)
	}
	if !o.allowType && a.Type != b.Type {
		return errors.New(errors.ErrCodePortMismatch, "port %s type %s does not match %s type %s", a.Name, a.Type, b.Name, b.Type)
	}
	return nil
}

// Align returns the transform that maps src onto target with opposite
// orientation, without any compatibility checks.
func Align(src, target port.Port, mirror bool) geom.Transform {
	orient := src.Orientation
	if mirror {
		orient = -orient
	}
	t := geom.Transform{
		Rotation: geom.NormalizeAngle(target.Orientation + 180 - orient),
		Mirror:   mirror,
	}
	t.Origin = target.Center.Sub(t.Apply(src.Center))
	return t
}
