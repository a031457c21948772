package cells

import (
	"fmt"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/placement"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// StraightHeaterMeanderConfig configures a waveguide of total optical
// Length folded into Rows parallel passes under one heater strip. Spacing is
// the pitch of the passes; zero packs them as tightly as the U-turn bends
// allow. The heater covers every pass and overhangs the outer ones by
// HeaterWidth/2. Extension straights lead into and out of the meander.
type StraightHeaterMeanderConfig struct {
	Length      float64               `json:"length"`
	Rows        int                   `json:"rows"`
	Spacing     float64               `json:"spacing"`
	HeaterWidth float64               `json:"heater_width"`
	Extension   float64               `json:"extension_length"`
	Bend        BendFamily            `json:"bend"`
	XS          xsection.CrossSection `json:"xs"`
}

func (c *StraightHeaterMeanderConfig) setDefaults() {
	defaultXS(&c.XS)
	if c.Length == 0 {
		c.Length = 300
	}
	if c.Rows == 0 {
		c.Rows = 3
	}
	if c.HeaterWidth == 0 {
		c.HeaterWidth = 2.5
	}
	if c.Extension == 0 {
		c.Extension = 15
	}
	if c.Bend == "" {
		c.Bend = BendCircular
	}
}

// Validate checks the configuration. The spacing and the length budget are
// checked against the bends when they are built.
func (c *StraightHeaterMeanderConfig) Validate() error {
	if !c.Bend.Valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown bend family %q", c.Bend)
	}
	return errors.First(
		errors.ValidatePositive("length", c.Length),
		errors.ValidateMinInt("rows", c.Rows, 2),
		errors.ValidateNonNegative("spacing", c.Spacing),
		errors.ValidatePositive("heater width", c.HeaterWidth),
		errors.ValidatePositive("extension length", c.Extension),
		c.XS.Validate(),
	)
}

// StraightHeaterMeander returns the meander with optical input o1 facing
// west, Extension before the first pass at the origin, and output o2 past
// the end of the last pass, plus heater contacts e1 (west) and e2 (east).
// Neighbouring passes are joined by Manhattan U-turns alternating between
// the east and west ends, and share what the turns leave of Length.
func (l *Library) StraightHeaterMeander(cfg StraightHeaterMeanderConfig) (*component.Component, error) {
	return build(l, "straight_heater_meander", &cfg, func(name string, cfg *StraightHeaterMeanderConfig) (*component.Component, error) {
		bend, err := l.Bend(BendConfig{Family: cfg.Bend, Angle: 90, XS: cfg.XS})
		if err != nil {
			return nil, err
		}
		corner, err := bend.Port("o2")
		if err != nil {
			return nil, err
		}
		spacing := cfg.Spacing
		if spacing == 0 {
			spacing = 2 * corner.Center.X
		}

		// Route one turn on its own to learn its length.
		p1 := port.Port{Name: "p1", Width: cfg.XS.Width(), Layer: cfg.XS.Layer(), Type: cfg.XS.SectionPortType(0)}
		p2 := p1
		p2.Name, p2.Center = "p2", geom.Pt(0, spacing)
		uturn, err := l.RouteManhattan(component.NewBuilder(name+"_uturn"), p1, p2, cfg.XS, cfg.Bend)
		if err != nil {
			return nil, err
		}
		passLength := (cfg.Length - float64(cfg.Rows-1)*uturn.Length) / float64(cfg.Rows)
		if passLength <= routeTolerance {
			return nil, errors.New(errors.ErrCodeInvalidParameter,
				"meander length %g is too short for %d passes: the turns take %g",
				cfg.Length, cfg.Rows, float64(cfg.Rows-1)*uturn.Length)
		}
		pass, err := l.Straight(StraightConfig{Length: passLength, XS: cfg.XS})
		if err != nil {
			return nil, err
		}
		ext, err := l.Straight(StraightConfig{Length: cfg.Extension, XS: cfg.XS})
		if err != nil {
			return nil, err
		}

		b := component.NewBuilder(name)
		rows := make([]*component.Reference, cfg.Rows)
		for i := range rows {
			t := geom.Translate(0, float64(i)*spacing)
			if rows[i], err = b.AddNamedRef(fmt.Sprintf("pass%d", i+1), pass, t); err != nil {
				return nil, err
			}
		}

		for i := 0; i+1 < cfg.Rows; i++ {
			// Even passes run east, odd ones west.
			end := "o2"
			if i%2 == 1 {
				end = "o1"
			}
			from, err := rows[i].Port(end)
			if err != nil {
				return nil, err
			}
			to, err := rows[i+1].Port(end)
			if err != nil {
				return nil, err
			}
			if _, err := l.RouteManhattan(b, from, to, cfg.XS, cfg.Bend); err != nil {
				return nil, fmt.Errorf("turn after pass %d: %w", i+1, err)
			}
		}

		last := cfg.Rows - 1
		exit := "o2"
		if last%2 == 1 {
			exit = "o1"
		}
		for _, lead := range []struct {
			row        *component.Reference
			port, name string
		}{
			{rows[0], "o1", "o1"},
			{rows[last], exit, "o2"},
		} {
			at, err := lead.row.Port(lead.port)
			if err != nil {
				return nil, err
			}
			r, err := placement.Place(b, "", ext, "o1", at)
			if err != nil {
				return nil, err
			}
			if err := b.ExposePort(r, "o2", lead.name); err != nil {
				return nil, err
			}
		}

		span := float64(last) * spacing
		height := span + cfg.HeaterWidth
		mid := span / 2
		if err := b.AddRectangle(layer.Heater, geom.R(0, mid-height/2, passLength, mid+height/2)); err != nil {
			return nil, err
		}
		for _, p := range []port.Port{
			{Name: "e1", Center: geom.Pt(0, mid), Orientation: 180, Width: height, Layer: layer.Heater, Type: port.Electrical},
			{Name: "e2", Center: geom.Pt(passLength, mid), Orientation: 0, Width: height, Layer: layer.Heater, Type: port.Electrical},
		} {
			if err := b.AddPort(p); err != nil {
				return nil, err
			}
		}

		for k, v := range map[string]any{
			"length":        float64(cfg.Rows)*passLength + float64(last)*uturn.Length,
			"heater_length": passLength,
			"spacing":       spacing,
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
