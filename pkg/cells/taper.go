package cells

import (
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// TaperConfig configures a linear width taper of the main strand from
// Width1 to Width2. Width1 defaults to the cross-section width and Width2 to
// Width1.
type TaperConfig struct {
	Length float64               `json:"length"`
	Width1 float64               `json:"width1"`
	Width2 float64               `json:"width2"`
	XS     xsection.CrossSection `json:"xs"`
}

func (c *TaperConfig) setDefaults() {
	defaultXS(&c.XS)
	if c.Length == 0 {
		c.Length = 10
	}
	if c.Width1 == 0 {
		c.Width1 = c.XS.Width()
	}
	if c.Width2 == 0 {
		c.Width2 = c.Width1
	}
}

// Validate checks the configuration.
func (c *TaperConfig) Validate() error {
	return errors.First(
		errors.ValidatePositive("length", c.Length),
		errors.ValidatePositive("width1", c.Width1),
		errors.ValidatePositive("width2", c.Width2),
		c.XS.Validate(),
	)
}

// Taper returns a straight taper. Its ports carry the end widths.
func (l *Library) Taper(cfg TaperConfig) (*component.Component, error) {
	return build(l, "taper", &cfg, func(name string, cfg *TaperConfig) (*component.Component, error) {
		p, err := path.Straight(cfg.Length, 2)
		if err != nil {
			return nil, err
		}
		return extruded(name, *cfg, cfg.XS.Taper(cfg.Width1, cfg.Width2), p, nil)
	})
}

// TransitionConfig configures a straight section morphing one
// cross-section into another. Both need the same strands on the same layers.
type TransitionConfig struct {
	Length float64               `json:"length"`
	From   xsection.CrossSection `json:"from"`
	To     xsection.CrossSection `json:"to"`
}

func (c *TransitionConfig) setDefaults() {
	if c.Length == 0 {
		c.Length = 10
	}
	defaultXS(&c.From)
	if len(c.To.Sections) == 0 {
		c.To = c.From.WithWidth(2 * c.From.Width())
	}
}

// Validate checks the configuration, including that the two cross-sections
// can be morphed into each other.
func (c *TransitionConfig) Validate() error {
	if err := errors.ValidatePositive("length", c.Length); err != nil {
		return err
	}
	_, err := xsection.Transition(c.From, c.To)
	return err
}

// Transition returns a straight transition from cfg.From to cfg.To.
func (l *Library) Transition(cfg TransitionConfig) (*component.Component, error) {
	return build(l, "transition", &cfg, func(name string, cfg *TransitionConfig) (*component.Component, error) {
		xs, err := xsection.Transition(cfg.From, cfg.To)
		if err != nil {
			return nil, err
		}
		p, err := path.Straight(cfg.Length, 2)
		if err != nil {
			return nil, err
		}
		return extruded(name, *cfg, xs, p, nil)
	})
}
