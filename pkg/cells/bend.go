package cells

import (
	"math"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/extrude"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// BendFamily selects the curve a bend follows.
type BendFamily string

const (
	BendCircular BendFamily = "circular"
	BendEuler    BendFamily = "euler"
)

// bendStrategy produces the centre line of one bend family.
type bendStrategy func(c *BendConfig) (*path.Path, error)

var bendStrategies = map[BendFamily]bendStrategy{
	BendCircular: func(c *BendConfig) (*path.Path, error) {
		return path.Arc(c.Radius, c.Angle, c.NPoints)
	},
	BendEuler: func(c *BendConfig) (*path.Path, error) {
		if c.ArcFloorplan {
			return path.EulerFloorplan(c.Radius, c.Angle, c.P, c.NPoints)
		}
		return path.Euler(c.Radius, c.Angle, c.P, c.NPoints)
	},
}

// Valid reports whether f names a known family.
func (f BendFamily) Valid() bool {
	_, ok := bendStrategies[f]
	return ok
}

// BendFamilies lists the known families.
func BendFamilies() []BendFamily { return []BendFamily{BendCircular, BendEuler} }

// BendConfig configures a bend. Radius is the minimum radius of curvature
// and defaults to the cross-section radius. P is the Euler fraction and is
// ignored by circular bends. ArcFloorplan makes an Euler bend end where a
// circular bend of Radius would, so Radius is no longer its minimum radius.
type BendConfig struct {
	Family       BendFamily            `json:"family"`
	Radius       float64               `json:"radius"`
	Angle        float64               `json:"angle"`
	P            float64               `json:"p"`
	ArcFloorplan bool                  `json:"with_arc_floorplan"`
	NPoints      int                   `json:"npoints"`
	XS           xsection.CrossSection `json:"xs"`
}

func (c *BendConfig) setDefaults() {
	defaultXS(&c.XS)
	if c.Family == "" {
		c.Family = BendCircular
	}
	if c.Radius == 0 {
		c.Radius = c.XS.Radius
	}
	if c.Angle == 0 {
		c.Angle = 90
	}
	switch {
	case c.Family != BendEuler:
		c.P = 0
		c.ArcFloorplan = false
	case c.P == 0:
		c.P = 0.5
	}
}

// Validate checks the configuration.
func (c *BendConfig) Validate() error {
	if !c.Family.Valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown bend family %q", c.Family)
	}
	return errors.First(
		errors.ValidatePositive("radius", c.Radius),
		errors.ValidateRange("angle", c.Angle, -360, 360),
		errors.ValidateRange("p", c.P, 0, 1),
		c.XS.Validate(),
	)
}

// Bend returns a bend turning by cfg.Angle degrees, counter-clockwise for
// positive angles. Bends tighter than the cross-section radius are rejected.
func (l *Library) Bend(cfg BendConfig) (*component.Component, error) {
	factory := "bend_" + string(cfg.Family)
	if cfg.Family == "" {
		factory = "bend_" + string(BendCircular)
	}
	return build(l, factory, &cfg, func(name string, cfg *BendConfig) (*component.Component, error) {
		p, err := bendStrategies[cfg.Family](cfg)
		if err != nil {
			return nil, err
		}
		info := map[string]any{
			"radius":          cfg.Radius,
			"min_bend_radius": p.MinRadius(),
			"dy":              math.Abs(p.End().Y),
		}
		return extruded(name, *cfg, cfg.XS, p, info, extrude.WithMinRadiusCheck())
	})
}

// BendSConfig configures a Bezier S-bend spanning Size: Size.X forward and
// Size.Y sideways.
type BendSConfig struct {
	Size    geom.Point            `json:"size"`
	NPoints int                   `json:"npoints"`
	XS      xsection.CrossSection `json:"xs"`
}

func (c *BendSConfig) setDefaults() {
	if c.Size == (geom.Point{}) {
		c.Size = geom.Pt(11, 1.8)
	}
	if c.NPoints == 0 {
		c.NPoints = 99
	}
	defaultXS(&c.XS)
}

// Validate checks the configuration.
func (c *BendSConfig) Validate() error {
	if err := errors.First(
		errors.ValidatePositive("size x", c.Size.X),
		errors.ValidateFinite("size y", c.Size.Y),
		errors.ValidateMinInt("npoints", c.NPoints, 2),
	); err != nil {
		return err
	}
	if c.Size.Y == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "bend_s needs a non-zero sideways offset")
	}
	return c.XS.Validate()
}

// BendS returns a cubic Bezier S-bend. Its tightest radius is recorded as
// "min_bend_radius" but not enforced.
func (l *Library) BendS(cfg BendSConfig) (*component.Component, error) {
	return build(l, "bend_s", &cfg, func(name string, cfg *BendSConfig) (*component.Component, error) {
		dx, dy := cfg.Size.X, cfg.Size.Y
		p, err := path.Bezier([4]geom.Point{{}, geom.Pt(dx/2, 0), geom.Pt(dx/2, dy), geom.Pt(dx, dy)}, cfg.NPoints)
		if err != nil {
			return nil, err
		}
		return extruded(name, *cfg, cfg.XS, p, map[string]any{"min_bend_radius": p.MinRadius()})
	})
}

// SBendCircularConfig configures an S-bend made of two opposite arcs.
type SBendCircularConfig struct {
	Radius  float64               `json:"radius"`
	Offset  float64               `json:"offset"`
	NPoints int                   `json:"npoints"`
	XS      xsection.CrossSection `json:"xs"`
}

func (c *SBendCircularConfig) setDefaults() {
	defaultXS(&c.XS)
	if c.Radius == 0 {
		c.Radius = c.XS.Radius
	}
	if c.Offset == 0 {
		c.Offset = 5
	}
}

// Validate checks the configuration.
func (c *SBendCircularConfig) Validate() error {
	return errors.First(
		errors.ValidatePositive("radius", c.Radius),
		errors.ValidateFinite("offset", c.Offset),
		errors.ValidateMinInt("npoints", c.NPoints, 0),
		c.XS.Validate(),
	)
}

// SBendCircular returns an S-bend shifting sideways by cfg.Offset.
func (l *Library) SBendCircular(cfg SBendCircularConfig) (*component.Component, error) {
	return build(l, "sbend_circular", &cfg, func(name string, cfg *SBendCircularConfig) (*component.Component, error) {
		p, err := path.SBend(cfg.Radius, cfg.Offset, cfg.NPoints)
		if err != nil {
			return nil, err
		}
		return extruded(name, *cfg, cfg.XS, p, map[string]any{"min_bend_radius": p.MinRadius()}, extrude.WithMinRadiusCheck())
	})
}
