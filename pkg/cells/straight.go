package cells

import (
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// StraightConfig configures a straight waveguide.
type StraightConfig struct {
	Length  float64               `json:"length"`
	NPoints int                   `json:"npoints"`
	XS      xsection.CrossSection `json:"xs"`
}

func (c *StraightConfig) setDefaults() {
	if c.Length == 0 {
		c.Length = 10
	}
	if c.NPoints == 0 {
		c.NPoints = 2
	}
	defaultXS(&c.XS)
}

// Validate checks the configuration.
func (c *StraightConfig) Validate() error {
	return errors.First(
		errors.ValidatePositive("length", c.Length),
		errors.ValidateMinInt("npoints", c.NPoints, 2),
		c.XS.Validate(),
	)
}

// Straight returns a straight waveguide of cfg.Length along +x.
func (l *Library) Straight(cfg StraightConfig) (*component.Component, error) {
	return build(l, "straight", &cfg, func(name string, cfg *StraightConfig) (*component.Component, error) {
		p, err := path.Straight(cfg.Length, cfg.NPoints)
		if err != nil {
			return nil, err
		}
		return extruded(name, *cfg, cfg.XS, p, nil)
	})
}
