package cells

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
)

// Justify aligns text lines horizontally around the origin.
type Justify string

const (
	JustifyLeft   Justify = "left"
	JustifyCenter Justify = "center"
	JustifyRight  Justify = "right"
)

// curveSteps is the number of line segments per outline curve.
const curveSteps = 8

// lineSpacing is the baseline distance in em.
const lineSpacing = 1.2

var goRegular = sync.OnceValues(func() (*sfnt.Font, error) {
	return sfnt.Parse(goregular.TTF)
})

// TextConfig configures a text label. Size is the em height in µm; lines
// are separated by "\n" and stacked downwards from the first baseline at
// y = 0.
type TextConfig struct {
	Text    string      `json:"text"`
	Size    float64     `json:"size"`
	Layer   layer.Layer `json:"layer"`
	Justify Justify     `json:"justify"`
}

func (c *TextConfig) setDefaults() {
	if c.Text == "" {
		c.Text = "abcd"
	}
	if c.Size == 0 {
		c.Size = 10
	}
	if c.Layer == (layer.Layer{}) {
		c.Layer = layer.Text
	}
	if c.Justify == "" {
		c.Justify = JustifyLeft
	}
}

// Validate checks the configuration.
func (c *TextConfig) Validate() error {
	if err := errors.ValidatePositive("size", c.Size); err != nil {
		return err
	}
	switch c.Justify {
	case JustifyLeft, JustifyCenter, JustifyRight:
	default:
		return errors.New(errors.ErrCodeInvalidParameter, "unknown justification %q", c.Justify)
	}
	return nil
}

// Text returns the outlines of cfg.Text set in Go Regular. Glyph holes are
// bridged into their outline so every polygon is simple.
func (l *Library) Text(cfg TextConfig) (*component.Component, error) {
	return build(l, "text", &cfg, func(name string, cfg *TextConfig) (*component.Component, error) {
		f, err := goRegular()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse font")
		}
		b := component.NewBuilder(name)
		for i, line := range strings.Split(cfg.Text, "\n") {
			pgs, width, err := typeset(f, line, cfg.Size)
			if err != nil {
				return nil, err
			}
			dx := 0.0
			switch cfg.Justify {
			case JustifyCenter:
				dx = -width / 2
			case JustifyRight:
				dx = -width
			}
			t := geom.Translate(dx, -float64(i)*lineSpacing*cfg.Size)
			for _, pg := range pgs {
				if err := b.AddPolygon(cfg.Layer, pg.Transform(t)); err != nil {
					return nil, err
				}
			}
		}
		if err := b.SetSettings(*cfg); err != nil {
			return nil, err
		}
		return b.Finalize()
	})
}

// typeset lays out one line starting at the origin and returns its polygons
// and advance width, scaled so one em is size.
func typeset(f *sfnt.Font, line string, size float64) ([]geom.Polygon, float64, error) {
	var buf sfnt.Buffer
	upem := fixed.Int26_6(f.UnitsPerEm())
	ppem := upem << 6
	scale := size / float64(upem)

	var out []geom.Polygon
	x := 0.0
	for _, r := range line {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInternal, err, "glyph index of %q", r)
		}
		if idx == 0 {
			return nil, 0, errors.New(errors.ErrCodeInvalidParameter, "no glyph for %q", r)
		}
		segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInternal, err, "load glyph %q", r)
		}
		origin := geom.Translate(x, 0)
		for _, pg := range glyphPolygons(segs, scale) {
			out = append(out, pg.Transform(origin))
		}
		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInternal, err, "advance of %q", r)
		}
		x += float64(adv) / 64 * scale
	}
	return out, x, nil
}

// glyphPolygons flattens glyph segments into contours (y up) and merges
// every hole into the outline enclosing it.
func glyphPolygons(segs sfnt.Segments, scale float64) []geom.Polygon {
	pt := func(p fixed.Point26_6) geom.Point {
		return geom.Pt(float64(p.X)/64*scale, -float64(p.Y)/64*scale)
	}
	var contours []geom.Polygon
	var cur geom.Polygon
	flush := func() {
		if cur = cur.Dedup(1e-9); len(cur) >= 3 {
			contours = append(contours, cur)
		}
		cur = nil
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			cur = geom.Polygon{pt(s.Args[0])}
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p0, c, p1 := cur[len(cur)-1], pt(s.Args[0]), pt(s.Args[1])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				cur = append(cur, p0.Lerp(c, t).Lerp(c.Lerp(p1, t), t))
			}
		case sfnt.SegmentOpCubeTo:
			p0, c1, c2, p1 := cur[len(cur)-1], pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				a, b, c := p0.Lerp(c1, t), c1.Lerp(c2, t), c2.Lerp(p1, t)
				cur = append(cur, a.Lerp(b, t).Lerp(b.Lerp(c, t), t))
			}
		}
	}
	flush()

	// Nesting depth decides outline (even) or hole (odd).
	depth := make([]int, len(contours))
	for i, c := range contours {
		for j, o := range contours {
			if i != j && o.Contains(c[0]) {
				depth[i]++
			}
		}
	}
	holes := make(map[int][]geom.Polygon)
	for i, c := range contours {
		if depth[i]%2 == 0 {
			continue
		}
		parent := -1
		for j, o := range contours {
			if depth[j] == depth[i]-1 && o.Contains(c[0]) &&
				(parent < 0 || o.Area() < contours[parent].Area()) {
				parent = j
			}
		}
		if parent >= 0 {
			holes[parent] = append(holes[parent], c)
		}
	}
	var out []geom.Polygon
	for i, c := range contours {
		if depth[i]%2 == 0 {
			out = append(out, geom.MergeHoles(c, holes[i]))
		}
	}
	return out
}
