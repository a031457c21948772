package cells

import (
	"math"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
)

// PadConfig configures a rectangular bond pad centred at the origin.
// Opening insets a passivation opening on OpeningLayer; zero omits it.
type PadConfig struct {
	Size         geom.Point  `json:"size"`
	Layer        layer.Layer `json:"layer"`
	Opening      float64     `json:"opening"`
	OpeningLayer layer.Layer `json:"opening_layer"`
}

func (c *PadConfig) setDefaults() {
	if c.Size == (geom.Point{}) {
		c.Size = geom.Pt(100, 100)
	}
	if c.Layer == (layer.Layer{}) {
		c.Layer = layer.MTop
	}
	if c.OpeningLayer == (layer.Layer{}) {
		c.OpeningLayer = layer.PadOpen
	}
}

// Validate checks the configuration.
func (c *PadConfig) Validate() error {
	if err := errors.First(
		errors.ValidatePositive("size x", c.Size.X),
		errors.ValidatePositive("size y", c.Size.Y),
		errors.ValidateNonNegative("opening", c.Opening),
	); err != nil {
		return err
	}
	if 2*c.Opening >= math.Min(c.Size.X, c.Size.Y) {
		return errors.New(errors.ErrCodeInvalidParameter,
			"pad opening inset %g leaves no opening in a %gx%g pad", c.Opening, c.Size.X, c.Size.Y)
	}
	return nil
}

// Pad returns a bond pad with electrical ports e1 (west), e2 (north),
// e3 (east) and e4 (south) on its edges and a placement port "pad" at the
// centre.
func (l *Library) Pad(cfg PadConfig) (*component.Component, error) {
	return build(l, "pad", &cfg, func(name string, cfg *PadConfig) (*component.Component, error) {
		b := component.NewBuilder(name)
		box := geom.R(-cfg.Size.X/2, -cfg.Size.Y/2, cfg.Size.X/2, cfg.Size.Y/2)
		if err := b.AddRectangle(cfg.Layer, box); err != nil {
			return nil, err
		}
		if cfg.Opening > 0 {
			if err := b.AddRectangle(cfg.OpeningLayer, box.Pad(-cfg.Opening)); err != nil {
				return nil, err
			}
		}
		if err := addEdgePorts(b, box, cfg.Layer); err != nil {
			return nil, err
		}
		if err := b.AddPort(port.Port{
			Name:   "pad",
			Width:  cfg.Size.X,
			Layer:  cfg.Layer,
			Type:   port.Placement,
			Center: geom.Point{},
		}); err != nil {
			return nil, err
		}
		if err := b.SetInfo("size", []float64{cfg.Size.X, cfg.Size.Y}); err != nil {
			return nil, err
		}
		if err := b.SetSettings(*cfg); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}

// addEdgePorts puts electrical ports e1..e4 on the west, north, east and
// south edge midpoints of box.
func addEdgePorts(b *component.Builder, box geom.Rect, l layer.Layer) error {
	c := box.Center()
	edges := []port.Port{
		{Name: "e1", Center: geom.Pt(box.Min.X, c.Y), Orientation: 180, Width: box.Height()},
		{Name: "e2", Center: geom.Pt(c.X, box.Max.Y), Orientation: 90, Width: box.Width()},
		{Name: "e3", Center: geom.Pt(box.Max.X, c.Y), Orientation: 0, Width: box.Height()},
		{Name: "e4", Center: geom.Pt(c.X, box.Min.Y), Orientation: 270, Width: box.Width()},
	}
	for _, p := range edges {
		p.Layer = l
		p.Type = port.Electrical
		if err := b.AddPort(p); err != nil {
			return err
		}
	}
	return nil
}

// Via is one via level of a stack: square cuts of Size on Layer at
// Spacing, kept Enclosure inside the metal.
type Via struct {
	Layer     layer.Layer `json:"layer"`
	Size      float64     `json:"size"`
	Spacing   float64     `json:"spacing"`
	Enclosure float64     `json:"enclosure"`
}

// ViaStackConfig configures a stack of metal layers joined by via arrays.
type ViaStackConfig struct {
	Size   geom.Point    `json:"size"`
	Layers []layer.Layer `json:"layers"`
	Vias   []Via         `json:"vias"`
}

func (c *ViaStackConfig) setDefaults() {
	if c.Size == (geom.Point{}) {
		c.Size = geom.Pt(11, 11)
	}
	if len(c.Layers) == 0 {
		c.Layers = []layer.Layer{layer.M1, layer.M2, layer.MTop}
	}
	if c.Vias == nil {
		c.Vias = []Via{
			{Layer: layer.Via1, Size: 0.7, Spacing: 2, Enclosure: 1},
			{Layer: layer.Via2, Size: 0.7, Spacing: 2, Enclosure: 1},
		}
	}
}

// Validate checks the configuration. Every via level must fit at least one
// cut.
func (c *ViaStackConfig) Validate() error {
	if err := errors.First(
		errors.ValidatePositive("size x", c.Size.X),
		errors.ValidatePositive("size y", c.Size.Y),
	); err != nil {
		return err
	}
	if len(c.Layers) == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "via stack needs at least one metal layer")
	}
	for i, v := range c.Vias {
		if err := errors.First(
			errors.ValidatePositive("via size", v.Size),
			errors.ValidateNonNegative("via spacing", v.Spacing),
			errors.ValidateNonNegative("via enclosure", v.Enclosure),
		); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidParameter, err, "via %d", i)
		}
		if nx, ny := v.count(c.Size); nx < 1 || ny < 1 {
			return errors.New(errors.ErrCodeInvalidParameter,
				"via %d (%s) does not fit in a %gx%g stack", i, v.Layer, c.Size.X, c.Size.Y)
		}
	}
	return nil
}

// count returns how many cuts of v fit along each axis of size.
func (v Via) count(size geom.Point) (nx, ny int) {
	pitch := v.Size + v.Spacing
	n := func(w float64) int {
		return int(math.Floor((w-2*v.Enclosure-v.Size)/pitch+1e-9)) + 1
	}
	return n(size.X), n(size.Y)
}

// ViaStack returns metal rectangles on every layer of cfg.Layers joined by
// arrays of via cuts. The single cut is a shared child component placed as
// one array reference per via level. Ports e1..e4 sit on the top metal.
func (l *Library) ViaStack(cfg ViaStackConfig) (*component.Component, error) {
	return build(l, "via_stack", &cfg, func(name string, cfg *ViaStackConfig) (*component.Component, error) {
		b := component.NewBuilder(name)
		box := geom.R(-cfg.Size.X/2, -cfg.Size.Y/2, cfg.Size.X/2, cfg.Size.Y/2)
		for _, ml := range cfg.Layers {
			if err := b.AddRectangle(ml, box); err != nil {
				return nil, err
			}
		}
		for _, v := range cfg.Vias {
			cut, err := l.via(v)
			if err != nil {
				return nil, err
			}
			nx, ny := v.count(cfg.Size)
			pitch := v.Size + v.Spacing
			// Centre the array inside the metal.
			x0 := -float64(nx-1) * pitch / 2
			y0 := -float64(ny-1) * pitch / 2
			if _, err := b.AddArrayRef("", cut, geom.Translate(x0, y0), nx, ny, geom.Pt(pitch, pitch)); err != nil {
				return nil, err
			}
		}
		if err := addEdgePorts(b, box, cfg.Layers[len(cfg.Layers)-1]); err != nil {
			return nil, err
		}
		if err := b.SetSettings(*cfg); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}

// via returns the cached single cut of v centred at the origin.
func (l *Library) via(v Via) (*component.Component, error) {
	return l.Cache.GetOrBuild("via", v, func(name string) (*component.Component, error) {
		b := component.NewBuilder(name)
		if err := b.AddRectangle(v.Layer, geom.R(-v.Size/2, -v.Size/2, v.Size/2, v.Size/2)); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}
