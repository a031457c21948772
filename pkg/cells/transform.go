package cells

import (
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
)

// RotateConfig configures a rotated copy of Component.
type RotateConfig struct {
	Component *component.Component `json:"component"`
	Angle     float64              `json:"angle"`
}

func (c *RotateConfig) setDefaults() {
	if c.Angle == 0 {
		c.Angle = 90
	}
}

// Validate checks the configuration.
func (c *RotateConfig) Validate() error {
	if c.Component == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "rotate needs a component")
	}
	return errors.ValidateFinite("angle", c.Angle)
}

// Rotate returns a component holding one reference of cfg.Component rotated
// by cfg.Angle degrees about the origin, with its ports. Rotating the same
// component by the same angle returns the same instance.
func (l *Library) Rotate(cfg RotateConfig) (*component.Component, error) {
	return build(l, "rotate", &cfg, func(name string, cfg *RotateConfig) (*component.Component, error) {
		return wrap(name, cfg.Component, geom.Rotate(cfg.Angle), *cfg)
	})
}

// MirrorAxis is the line a component is mirrored across.
type MirrorAxis string

const (
	MirrorX MirrorAxis = "x"
	MirrorY MirrorAxis = "y"
)

// MirrorConfig configures a mirrored copy of Component.
type MirrorConfig struct {
	Component *component.Component `json:"component"`
	Axis      MirrorAxis           `json:"axis"`
}

func (c *MirrorConfig) setDefaults() {
	if c.Axis == "" {
		c.Axis = MirrorY
	}
}

// Validate checks the configuration.
func (c *MirrorConfig) Validate() error {
	if c.Component == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "mirror needs a component")
	}
	if c.Axis != MirrorX && c.Axis != MirrorY {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown mirror axis %q", c.Axis)
	}
	return nil
}

// Mirror returns a component holding one reference of cfg.Component
// mirrored across the x or y axis, with its ports.
func (l *Library) Mirror(cfg MirrorConfig) (*component.Component, error) {
	return build(l, "mirror", &cfg, func(name string, cfg *MirrorConfig) (*component.Component, error) {
		t := geom.MirrorX()
		if cfg.Axis == MirrorY {
			t = geom.Rotate(180).Compose(t)
		}
		return wrap(name, cfg.Component, t, *cfg)
	})
}

// wrap places child once under t and copies its ports.
func wrap(name string, child *component.Component, t geom.Transform, settings any) (*component.Component, error) {
	b := component.NewBuilder(name)
	r, err := b.AddNamedRef(child.Name(), child, t)
	if err != nil {
		return nil, err
	}
	if err := b.AddPorts(r.Ports(), ""); err != nil {
		return nil, err
	}
	for k, v := range child.Info() {
		if err := b.SetInfo(k, v); err != nil {
			return nil, err
		}
	}
	if err := b.SetSettings(settings); err != nil {
		return nil, err
	}
	return b.Finalize()
}
