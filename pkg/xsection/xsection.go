// Package xsection describes the width/layer/offset profiles that the
// extruder sweeps along a path.
//
// A [CrossSection] is a value: every method returns a modified copy and never
// touches the receiver's slices.
package xsection

import (
	"encoding/json"
	"sort"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
)

// Stop is a (fraction of path length, value) pair of a linear profile.
type Stop struct {
	At    float64 `json:"at" toml:"at"`
	Value float64 `json:"value" toml:"value"`
}

// Section is one strand swept along the path.
type Section struct {
	Name        string      `json:"name,omitempty"`
	Width       float64     `json:"width"`
	Offset      float64     `json:"offset,omitempty"`
	Layer       layer.Layer `json:"layer"`
	PortNames   [2]string   `json:"port_names,omitempty"`
	PortType    port.Type   `json:"port_type,omitempty"`
	WidthStops  []Stop      `json:"width_stops,omitempty"`
	OffsetStops []Stop      `json:"offset_stops,omitempty"`
}

// HasPorts reports whether the strand emits ports.
func (s Section) HasPorts() bool { return s.PortNames[0] != "" || s.PortNames[1] != "" }

// WidthAt returns the strand width at fraction f ∈ [0,1] of the path length.
func (s Section) WidthAt(f float64) float64 { return profile(s.WidthStops, s.Width, f) }

// OffsetAt returns the strand offset at fraction f ∈ [0,1] of the path length.
func (s Section) OffsetAt(f float64) float64 { return profile(s.OffsetStops, s.Offset, f) }

// Tapered reports whether width or offset vary along the path.
func (s Section) Tapered() bool { return len(s.WidthStops) > 0 || len(s.OffsetStops) > 0 }

func (s Section) clone() Section {
	s.WidthStops = append([]Stop(nil), s.WidthStops...)
	s.OffsetStops = append([]Stop(nil), s.OffsetStops...)
	return s
}

func profile(stops []Stop, base, f float64) float64 {
	switch {
	case len(stops) == 0:
		return base
	case f <= stops[0].At:
		return stops[0].Value
	case f >= stops[len(stops)-1].At:
		return stops[len(stops)-1].Value
	}
	i := sort.Search(len(stops), func(i int) bool { return stops[i].At >= f })
	a, b := stops[i-1], stops[i]
	if b.At == a.At {
		return b.Value
	}
	t := (f - a.At) / (b.At - a.At)
	return a.Value + t*(b.Value-a.Value)
}

// CrossSection is an ordered set of strands plus global constraints.
// The first section is the main strand.
type CrossSection struct {
	Sections    []Section     `json:"sections"`
	Radius      float64       `json:"radius"`
	BBoxLayers  []layer.Layer `json:"bbox_layers,omitempty"`
	BBoxPadding float64       `json:"bbox_padding,omitempty"`
	PortType    port.Type     `json:"port_type,omitempty"`
}

// New builds a cross-section from sections with the given minimum radius.
func New(radius float64, sections ...Section) CrossSection {
	xs := CrossSection{Radius: radius, PortType: port.Optical}
	for _, s := range sections {
		xs.Sections = append(xs.Sections, s.clone())
	}
	return xs
}

// Strip is a single-strand optical waveguide with ports o1/o2.
func Strip(width float64, l layer.Layer, radius float64) CrossSection {
	return New(radius, Section{
		Name:      "core",
		Width:     width,
		Layer:     l,
		PortNames: [2]string{"o1", "o2"},
	})
}

// DefaultStrip is a 0.5 µm strip on the WG layer with a 10 µm minimum radius.
func DefaultStrip() CrossSection { return Strip(0.5, layer.WG, 10) }

// Rib is a strip core over a wider slab strand.
func Rib(width, slabWidth float64, core, slab layer.Layer, radius float64) CrossSection {
	xs := Strip(width, core, radius)
	xs.Sections = append(xs.Sections, Section{Name: "slab", Width: slabWidth, Layer: slab})
	return xs
}

// Metal is an electrical routing strand with ports e1/e2.
func Metal(width float64, l layer.Layer) CrossSection {
	xs := New(0, Section{
		Name:      "metal",
		Width:     width,
		Layer:     l,
		PortNames: [2]string{"e1", "e2"},
		PortType:  port.Electrical,
	})
	xs.PortType = port.Electrical
	return xs
}

// Validate checks every strand and global constraint.
func (xs CrossSection) Validate() error {
	if len(xs.Sections) == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "cross-section needs at least one section")
	}
	if err := errors.ValidateNonNegative("radius", xs.Radius); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("bbox padding", xs.BBoxPadding); err != nil {
		return err
	}
	if xs.PortType != "" && !xs.PortType.Valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown port type %q", xs.PortType)
	}
	seen := map[string]bool{}
	for i, s := range xs.Sections {
		if err := s.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidParameter, err, "section %d", i)
		}
		for _, n := range s.PortNames {
			if n == "" {
				continue
			}
			if seen[n] {
				return errors.New(errors.ErrCodeInvalidParameter, "duplicate port name %q", n)
			}
			seen[n] = true
		}
	}
	return nil
}

func (s Section) validate() error {
	if err := errors.ValidatePositive("width", s.Width); err != nil {
		return err
	}
	if err := errors.ValidateFinite("offset", s.Offset); err != nil {
		return err
	}
	if s.HasPorts() {
		for _, n := range s.PortNames {
			if err := errors.ValidateName("port", n); err != nil {
				return err
			}
		}
		if s.PortNames[0] == s.PortNames[1] {
			return errors.New(errors.ErrCodeInvalidParameter, "port names must differ, got %q twice", s.PortNames[0])
		}
	}
	if s.PortType != "" && !s.PortType.Valid() {
		return errors.New(errors.ErrCodeInvalidParameter, "unknown port type %q", s.PortType)
	}
	if err := validateStops("width", s.WidthStops, true); err != nil {
		return err
	}
	return validateStops("offset", s.OffsetStops, false)
}

func validateStops(kind string, stops []Stop, nonNegative bool) error {
	prev := -1.0
	for _, st := range stops {
		if err := errors.ValidateRange(kind+" stop position", st.At, 0, 1); err != nil {
			return err
		}
		if st.At < prev {
			return errors.New(errors.ErrCodeInvalidParameter, "%s stops must be sorted by position", kind)
		}
		prev = st.At
		if nonNegative {
			if err := errors.ValidateNonNegative(kind, st.Value); err != nil {
				return err
			}
		} else if err := errors.ValidateFinite(kind, st.Value); err != nil {
			return err
		}
	}
	return nil
}

// Main returns the main strand.
func (xs CrossSection) Main() Section { return xs.Sections[0] }

// Width returns the main strand width.
func (xs CrossSection) Width() float64 { return xs.Sections[0].Width }

// Layer returns the main strand layer.
func (xs CrossSection) Layer() layer.Layer { return xs.Sections[0].Layer }

// SectionPortType resolves the port type of strand i.
func (xs CrossSection) SectionPortType(i int) port.Type {
	if t := xs.Sections[i].PortType; t != "" {
		return t
	}
	if xs.PortType != "" {
		return xs.PortType
	}
	return port.Optical
}

// Copy returns a deep copy of xs.
func (xs CrossSection) Copy() CrossSection {
	out := xs
	out.Sections = make([]Section, len(xs.Sections))
	for i, s := range xs.Sections {
		out.Sections[i] = s.clone()
	}
	out.BBoxLayers = append([]layer.Layer(nil), xs.BBoxLayers...)
	return out
}

// WithWidth returns xs with the main strand width replaced.
func (xs CrossSection) WithWidth(w float64) CrossSection {
	out := xs.Copy()
	out.Sections[0].Width = w
	return out
}

// WithLayer returns xs with the main strand layer replaced.
func (xs CrossSection) WithLayer(l layer.Layer) CrossSection {
	out := xs.Copy()
	out.Sections[0].Layer = l
	return out
}

// WithRadius returns xs with a different minimum radius.
func (xs CrossSection) WithRadius(r float64) CrossSection {
	out := xs.Copy()
	out.Radius = r
	return out
}

// WithBBox returns xs with cladding layers padded by padding.
func (xs CrossSection) WithBBox(padding float64, layers ...layer.Layer) CrossSection {
	out := xs.Copy()
	out.BBoxLayers = append([]layer.Layer(nil), layers...)
	out.BBoxPadding = padding
	return out
}

// WithPortNames returns xs with the main strand's port names replaced.
func (xs CrossSection) WithPortNames(in, out string) CrossSection {
	c := xs.Copy()
	c.Sections[0].PortNames = [2]string{in, out}
	return c
}

// Add returns xs with an extra strand appended.
func (xs CrossSection) Add(s Section) CrossSection {
	out := xs.Copy()
	out.Sections = append(out.Sections, s.clone())
	return out
}

// Mirror returns xs with every offset negated.
func (xs CrossSection) Mirror() CrossSection {
	out := xs.Copy()
	for i := range out.Sections {
		out.Sections[i].Offset = -out.Sections[i].Offset
		for j := range out.Sections[i].OffsetStops {
			out.Sections[i].OffsetStops[j].Value = -out.Sections[i].OffsetStops[j].Value
		}
	}
	return out
}

// Taper returns xs with the main strand width varying linearly from w1 to w2.
func (xs CrossSection) Taper(w1, w2 float64) CrossSection {
	out := xs.Copy()
	out.Sections[0].WidthStops = []Stop{{0, w1}, {1, w2}}
	out.Sections[0].Width = w1
	return out
}

// Transition returns a cross-section morphing a into b along the path.
// Strands are matched by position and must share layers.
func Transition(a, b CrossSection) (CrossSection, error) {
	if err := a.Validate(); err != nil {
		return CrossSection{}, err
	}
	if err := b.Validate(); err != nil {
		return CrossSection{}, err
	}
	if len(a.Sections) != len(b.Sections) {
		return CrossSection{}, errors.New(errors.ErrCodeInvalidParameter,
			"transition needs equal strand counts, got %d and %d", len(a.Sections), len(b.Sections))
	}
	out := a.Copy()
	if b.Radius > out.Radius {
		out.Radius = b.Radius
	}
	for i := range out.Sections {
		sa, sb := a.Sections[i], b.Sections[i]
		if sa.Layer != sb.Layer {
			return CrossSection{}, errors.New(errors.ErrCodeInvalidParameter,
				"transition strand %d changes layer %s -> %s", i, sa.Layer, sb.Layer)
		}
		s := &out.Sections[i]
		s.WidthStops = []Stop{{0, sa.WidthAt(1)}, {1, sb.WidthAt(0)}}
		s.OffsetStops = []Stop{{0, sa.OffsetAt(1)}, {1, sb.OffsetAt(0)}}
		if !sa.HasPorts() {
			s.PortNames = sb.PortNames
		}
	}
	return out, nil
}

// Key returns a canonical encoding of xs, equal for equal values.
func (xs CrossSection) Key() string {
	// Only plain data fields; Marshal cannot fail.
	b, _ := json.Marshal(xs)
	return string(b)
}

// Equal reports value equality.
func (xs CrossSection) Equal(o CrossSection) bool { return xs.Key() == o.Key() }
