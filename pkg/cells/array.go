package cells

import (
	"fmt"
	"math"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/connect"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/placement"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// ArrayConfig configures a Columns×Rows array of Component. With AddPorts
// the ports of every repetition are exposed as "<port>_<row>_<col>".
type ArrayConfig struct {
	Component *component.Component `json:"component"`
	Columns   int                  `json:"columns"`
	Rows      int                  `json:"rows"`
	Pitch     geom.Point           `json:"pitch"`
	AddPorts  bool                 `json:"add_ports"`
}

func (c *ArrayConfig) setDefaults() {
	if c.Columns == 0 {
		c.Columns = 6
	}
	if c.Rows == 0 {
		c.Rows = 1
	}
	if c.Pitch == (geom.Point{}) {
		c.Pitch = geom.Pt(150, 150)
	}
}

// Validate checks the configuration.
func (c *ArrayConfig) Validate() error {
	if c.Component == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "array needs a component")
	}
	return errors.First(
		errors.ValidateMinInt("columns", c.Columns, 1),
		errors.ValidateMinInt("rows", c.Rows, 1),
		errors.ValidateFinite("pitch x", c.Pitch.X),
		errors.ValidateFinite("pitch y", c.Pitch.Y),
	)
}

// Array returns a single array reference of cfg.Component. A nil component
// defaults to a pad.
func (l *Library) Array(cfg ArrayConfig) (*component.Component, error) {
	if cfg.Component == nil {
		pad, err := l.Pad(PadConfig{})
		if err != nil {
			return nil, err
		}
		cfg.Component = pad
	}
	return build(l, "array", &cfg, func(name string, cfg *ArrayConfig) (*component.Component, error) {
		b := component.NewBuilder(name)
		r, err := placement.Grid(b, "", cfg.Component, cfg.Columns, cfg.Rows, cfg.Pitch)
		if err != nil {
			return nil, err
		}
		if cfg.AddPorts {
			if err := b.AddPorts(r.ArrayPorts(), ""); err != nil {
				return nil, err
			}
		}
		if err := b.SetSettings(*cfg); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}

// ArrayWithFanoutConfig configures a row of N components, each with a
// waveguide leaving Port, turning west and ending on a common vertical
// line. Lane i is WaveguidePitch·i lower than lane 0.
type ArrayWithFanoutConfig struct {
	Component      *component.Component  `json:"component"`
	Port           string                `json:"port"`
	N              int                   `json:"n"`
	Pitch          float64               `json:"pitch"`
	WaveguidePitch float64               `json:"waveguide_pitch"`
	StartStraight  float64               `json:"start_straight"`
	EndStraight    float64               `json:"end_straight"`
	Radius         float64               `json:"radius"`
	Bend           BendFamily            `json:"bend"`
	XS             xsection.CrossSection `json:"xs"`
}

func (c *ArrayWithFanoutConfig) setDefaults() {
	defaultXS(&c.XS)
	if c.Port == "" {
		c.Port = "e4"
	}
	if c.N == 0 {
		c.N = 3
	}
	if c.Pitch == 0 {
		c.Pitch = 150
	}
	if c.WaveguidePitch == 0 {
		c.WaveguidePitch = 10
	}
	if c.StartStraight == 0 {
		c.StartStraight = 5
	}
	if c.EndStraight == 0 {
		c.EndStraight = 40
	}
	if c.Radius == 0 {
		c.Radius = c.XS.Radius
	}
	if c.Bend == "" {
		c.Bend = BendEuler
	}
}

// Validate checks the configuration.
func (c *ArrayWithFanoutConfig) Validate() error {
	if c.Component == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "array with fanout needs a component")
	}
	if _, err := c.Component.Port(c.Port); err != nil {
		return err
	}
	if !c.Bend.Valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown bend family %q", c.Bend)
	}
	return errors.First(
		errors.ValidateMinInt("n", c.N, 1),
		errors.ValidatePositive("pitch", c.Pitch),
		errors.ValidateNonNegative("waveguide pitch", c.WaveguidePitch),
		errors.ValidatePositive("start straight", c.StartStraight),
		errors.ValidatePositive("end straight", c.EndStraight),
		errors.ValidatePositive("radius", c.Radius),
		c.XS.Validate(),
	)
}

// ArrayWithFanout returns the component row with its fanout. The west
// facing ends are renamed clockwise (o1 is the lowest lane).
func (l *Library) ArrayWithFanout(cfg ArrayWithFanoutConfig) (*component.Component, error) {
	if cfg.Component == nil {
		pad, err := l.Pad(PadConfig{})
		if err != nil {
			return nil, err
		}
		cfg.Component = pad
	}
	return build(l, "array_with_fanout", &cfg, func(name string, cfg *ArrayWithFanoutConfig) (*component.Component, error) {
		bend, err := l.Bend(BendConfig{Family: cfg.Bend, Radius: cfg.Radius, XS: cfg.XS})
		if err != nil {
			return nil, err
		}
		b := component.NewBuilder(name)
		// The component port need not match the waveguide.
		loose := []connect.Option{
			connect.AllowLayerMismatch(),
			connect.AllowTypeMismatch(),
			connect.WithWidthTolerance(math.Inf(1)),
		}
		for col := 0; col < cfg.N; col++ {
			ref, err := b.AddRef(cfg.Component, geom.Translate(float64(col)*cfg.Pitch, 0))
			if err != nil {
				return nil, err
			}
			anchor, err := ref.Port(cfg.Port)
			if err != nil {
				return nil, err
			}
			down, err := l.Straight(StraightConfig{Length: float64(col)*cfg.WaveguidePitch + cfg.StartStraight, XS: cfg.XS})
			if err != nil {
				return nil, err
			}
			across, err := l.Straight(StraightConfig{Length: float64(col)*cfg.Pitch + cfg.EndStraight, XS: cfg.XS})
			if err != nil {
				return nil, err
			}
			sref, err := placement.Place(b, "", down, "o2", anchor, loose...)
			if err != nil {
				return nil, err
			}
			turn, err := placeAt(b, bend, "o2", sref, "o1")
			if err != nil {
				return nil, err
			}
			out, err := placeAt(b, across, "o2", turn, "o1")
			if err != nil {
				return nil, err
			}
			if err := b.ExposePort(out, "o1", fmt.Sprintf("W_%d", col)); err != nil {
				return nil, err
			}
		}
		if err := b.AutoRenamePorts(); err != nil {
			return nil, err
		}
		if err := b.SetSettings(*cfg); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}

// placeAt adds child to b with its port in facing port at of ref.
func placeAt(b *component.Builder, child *component.Component, in string, ref *component.Reference, at string, opts ...connect.Option) (*component.Reference, error) {
	target, err := ref.Port(at)
	if err != nil {
		return nil, err
	}
	return placement.Place(b, "", child, in, target, opts...)
}
