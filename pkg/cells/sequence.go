package cells

import (
	"fmt"
	"strings"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/placement"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// Symbol maps one sequence character to a component and the ports the
// sequence enters and leaves it through.
type Symbol struct {
	Component *component.Component `json:"component"`
	In        string               `json:"in"`
	Out       string               `json:"out"`
}

// ComponentSequenceConfig configures a chain described by a string. Every
// character is a key of Symbols; a "!" before a character (or after the
// last one) enters that element through its Out port instead.
type ComponentSequenceConfig struct {
	Sequence string            `json:"sequence"`
	Symbols  map[string]Symbol `json:"symbols"`
}

func (c *ComponentSequenceConfig) setDefaults() {}

// Validate checks that the sequence parses and every symbol exists.
func (c *ComponentSequenceConfig) Validate() error {
	steps, err := c.steps()
	if err != nil {
		return err
	}
	for _, s := range steps {
		for _, p := range []string{s.In, s.Out} {
			if _, err := s.Component.Port(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// steps parses the sequence into chain steps.
func (c *ComponentSequenceConfig) steps() ([]placement.Step, error) {
	runes := []rune(c.Sequence)
	var steps []placement.Step
	flip := false
	for i, r := range runes {
		if r == '!' {
			switch {
			case i == len(runes)-1 && len(steps) > 0 && !flip:
				last := &steps[len(steps)-1]
				last.In, last.Out = last.Out, last.In
			case flip || i == len(runes)-1:
				return nil, errors.New(errors.ErrCodeInvalidParameter, "dangling '!' at position %d of %q", i, c.Sequence)
			default:
				flip = true
			}
			continue
		}
		sym, ok := c.Symbols[string(r)]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "unknown symbol %q in sequence %q", r, c.Sequence)
		}
		if sym.Component == nil {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol %q has no component", r)
		}
		in, out := sym.In, sym.Out
		if flip {
			in, out = out, in
			flip = false
		}
		steps = append(steps, placement.Step{
			Name:      fmt.Sprintf("%s%d", strings.ToLower(string(r)), len(steps)+1),
			Component: sym.Component,
			In:        in,
			Out:       out,
		})
	}
	if len(steps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "sequence %q has no elements", c.Sequence)
	}
	return steps, nil
}

// ComponentSequence chains the sequence elements port to port starting at
// the origin and exposes the first input as o1 and the last output as o2.
func (l *Library) ComponentSequence(cfg ComponentSequenceConfig) (*component.Component, error) {
	return build(l, "component_sequence", &cfg, func(name string, cfg *ComponentSequenceConfig) (*component.Component, error) {
		steps, err := cfg.steps()
		if err != nil {
			return nil, err
		}
		b := component.NewBuilder(name)
		refs, err := placement.Chain(b, geom.Identity, steps...)
		if err != nil {
			return nil, err
		}
		if err := b.ExposePort(refs[0], steps[0].In, "o1"); err != nil {
			return nil, err
		}
		last := len(refs) - 1
		if err := b.ExposePort(refs[last], steps[last].Out, "o2"); err != nil {
			return nil, err
		}
		total := 0.0
		for _, s := range steps {
			if v, ok := s.Component.InfoFloat("length"); ok {
				total += v
			}
		}
		if err := b.SetInfo("length", total); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}

// DelaySnakeSBendConfig configures a compact delay line of total Length:
// an input straight, a 180° bend, an S-bend back, a second 180° bend and
// an output straight. Length1 and Length4 fix the first and last straight;
// the two middle straights share the rest.
type DelaySnakeSBendConfig struct {
	Length           float64               `json:"length"`
	Length1          float64               `json:"length1"`
	Length4          float64               `json:"length4"`
	Radius           float64               `json:"radius"`
	WaveguideSpacing float64               `json:"waveguide_spacing"`
	SBendXSize       float64               `json:"sbend_xsize"`
	XS               xsection.CrossSection `json:"xs"`
}

func (c *DelaySnakeSBendConfig) setDefaults() {
	defaultXS(&c.XS)
	if c.Length == 0 {
		c.Length = 300
	}
	if c.Radius == 0 {
		c.Radius = c.XS.Radius
	}
	if c.WaveguideSpacing == 0 {
		c.WaveguideSpacing = c.Radius
	}
	if c.SBendXSize == 0 {
		c.SBendXSize = 100
	}
}

// Validate checks the configuration. The length budget is checked when the
// bends are known.
func (c *DelaySnakeSBendConfig) Validate() error {
	return errors.First(
		errors.ValidatePositive("length", c.Length),
		errors.ValidateNonNegative("length1", c.Length1),
		errors.ValidateNonNegative("length4", c.Length4),
		errors.ValidatePositive("radius", c.Radius),
		errors.ValidatePositive("waveguide spacing", c.WaveguideSpacing),
		errors.ValidatePositive("sbend xsize", c.SBendXSize),
		c.XS.Validate(),
	)
}

// DelaySnakeSBend returns the delay line with input o1 facing west and
// output o2 facing east. The 180° bends have radius (Radius +
// WaveguideSpacing)/2; a length too short for the bends is an
// INVALID_PARAMETER error.
func (l *Library) DelaySnakeSBend(cfg DelaySnakeSBendConfig) (*component.Component, error) {
	return build(l, "delay_snake_sbend", &cfg, func(name string, cfg *DelaySnakeSBendConfig) (*component.Component, error) {
		r180 := (cfg.Radius + cfg.WaveguideSpacing) / 2
		bend, err := l.Bend(BendConfig{Radius: r180, Angle: 180, XS: cfg.XS})
		if err != nil {
			return nil, err
		}
		sbend, err := l.BendS(BendSConfig{Size: geom.Pt(cfg.SBendXSize, cfg.Radius), XS: cfg.XS})
		if err != nil {
			return nil, err
		}
		bendLen, _ := bend.InfoFloat("length")
		sbendLen, _ := sbend.InfoFloat("length")
		middle := cfg.Length - 2*bendLen - sbendLen - cfg.Length1 - cfg.Length4
		if middle <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidParameter,
				"delay length %g is too short: bends and sbend take %g and the end straights %g",
				cfg.Length, 2*bendLen+sbendLen, cfg.Length1+cfg.Length4)
		}
		straight := func(length float64) (*component.Component, error) {
			return l.Straight(StraightConfig{Length: length, XS: cfg.XS})
		}
		half, err := straight(middle / 2)
		if err != nil {
			return nil, err
		}

		var steps []placement.Step
		if cfg.Length1 > 0 {
			s1, err := straight(cfg.Length1)
			if err != nil {
				return nil, err
			}
			steps = append(steps, placement.Step{Name: "s1", Component: s1, In: "o1", Out: "o2"})
		}
		steps = append(steps,
			placement.Step{Name: "b1", Component: bend, In: "o2", Out: "o1"},
			placement.Step{Name: "bs", Component: sbend, In: "o2", Out: "o1", Mirror: true},
			placement.Step{Name: "s2", Component: half, In: "o2", Out: "o1"},
			placement.Step{Name: "b2", Component: bend, In: "o1", Out: "o2"},
			placement.Step{Name: "s3", Component: half, In: "o1", Out: "o2"},
		)
		if cfg.Length4 > 0 {
			s4, err := straight(cfg.Length4)
			if err != nil {
				return nil, err
			}
			steps = append(steps, placement.Step{Name: "s4", Component: s4, In: "o1", Out: "o2"})
		}

		b := component.NewBuilder(name)
		refs, err := placement.Chain(b, geom.Identity, steps...)
		if err != nil {
			return nil, err
		}
		last := len(refs) - 1
		if err := b.ExposePort(refs[0], steps[0].In, "o1"); err != nil {
			return nil, err
		}
		if err := b.ExposePort(refs[last], steps[last].Out, "o2"); err != nil {
			return nil, err
		}
		for k, v := range map[string]any{
			"length":          cfg.Length,
			"bend180_radius":  r180,
			"min_bend_radius": sbend.Info()["min_bend_radius"],
		} {
			if err := b.SetInfo(k, v); err != nil {
				return nil, err
			}
		}
		if err := b.SetSettings(*cfg); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}
