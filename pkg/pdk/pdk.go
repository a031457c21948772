// Package pdk loads process design kits: a named layer map plus named
// cross-sections, written in TOML.
//
// A kit is resolved once at load time. Layer names inside cross-sections
// are looked up in the kit's own layer table and every cross-section is
// validated, so the rest of the module only ever sees [layer.Layer] and
// [xsection.CrossSection] values.
//
// # File format
//
//	name = "generic"
//	default_cross_section = "strip"
//
//	[layers]
//	WG = [1, 0]
//
//	[cross_sections.strip]
//	radius = 10
//	[[cross_sections.strip.sections]]
//	width = 0.5
//	layer = "WG"
//	port_names = ["o1", "o2"]
//
// Unknown keys are rejected with INVALID_CONFIG.
package pdk

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

//go:embed generic.toml
var genericTOML []byte

type kitFile struct {
	Name                string            `toml:"name"`
	DefaultCrossSection string            `toml:"default_cross_section"`
	Layers              map[string][2]int `toml:"layers"`
	CrossSections       map[string]xsFile `toml:"cross_sections"`
}

type xsFile struct {
	Radius      float64       `toml:"radius"`
	BBoxLayers  []string      `toml:"bbox_layers"`
	BBoxPadding float64       `toml:"bbox_padding"`
	PortType    string        `toml:"port_type"`
	Sections    []sectionFile `toml:"sections"`
}

type sectionFile struct {
	Name        string          `toml:"name"`
	Width       float64         `toml:"width"`
	Offset      float64         `toml:"offset"`
	Layer       string          `toml:"layer"`
	PortNames   []string        `toml:"port_names"`
	PortType    string          `toml:"port_type"`
	WidthStops  []xsection.Stop `toml:"width_stops"`
	OffsetStops []xsection.Stop `toml:"offset_stops"`
}

// PDK is a resolved design kit.
type PDK struct {
	Name   string
	Layers *layer.Registry

	xs        map[string]xsection.CrossSection
	defaultXS string
}

// Generic returns the built-in generic kit. Every call returns a fresh
// copy, so callers may register extra layers.
func Generic() *PDK {
	p, err := Parse(genericTOML)
	if err != nil {
		panic(fmt.Sprintf("pdk: built-in generic kit: %v", err))
	}
	return p
}

// Load reads and parses the kit at path.
func Load(path string) (*PDK, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read pdk %s", path)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and resolves a kit.
func Parse(data []byte) (*PDK, error) {
	var f kitFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode pdk")
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown pdk keys: %s", strings.Join(keys, ", "))
	}

	p := &PDK{
		Name:   f.Name,
		Layers: layer.NewRegistry(),
		xs:     make(map[string]xsection.CrossSection, len(f.CrossSections)),
	}
	// Register layers in document order.
	for _, k := range md.Keys() {
		if len(k) != 2 || k[0] != "layers" {
			continue
		}
		pair := f.Layers[k[1]]
		if err := p.Layers.Register(k[1], layer.L(pair[0], pair[1])); err != nil {
			return nil, err
		}
	}

	for name, xf := range f.CrossSections {
		xs, err := p.resolve(xf)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cross-section %s", name)
		}
		p.xs[name] = xs
	}

	p.defaultXS = f.DefaultCrossSection
	if p.defaultXS != "" {
		if _, ok := p.xs[p.defaultXS]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "default cross-section %q is not defined", p.defaultXS)
		}
	}
	return p, nil
}

func (p *PDK) resolve(xf xsFile) (xsection.CrossSection, error) {
	xs := xsection.CrossSection{
		Radius:      xf.Radius,
		BBoxPadding: xf.BBoxPadding,
		PortType:    port.Type(xf.PortType),
	}
	if xs.PortType == "" {
		xs.PortType = port.Optical
	}
	for _, n := range xf.BBoxLayers {
		l, err := p.Layers.Get(n)
		if err != nil {
			return xsection.CrossSection{}, err
		}
		xs.BBoxLayers = append(xs.BBoxLayers, l)
	}
	for i, sf := range xf.Sections {
		l, err := p.Layers.Get(sf.Layer)
		if err != nil {
			return xsection.CrossSection{}, errors.Wrap(errors.ErrCodeLayerNotFound, err, "section %d", i)
		}
		s := xsection.Section{
			Name:        sf.Name,
			Width:       sf.Width,
			Offset:      sf.Offset,
			Layer:       l,
			PortType:    port.Type(sf.PortType),
			WidthStops:  sf.WidthStops,
			OffsetStops: sf.OffsetStops,
		}
		switch len(sf.PortNames) {
		case 0:
		case 2:
			s.PortNames = [2]string{sf.PortNames[0], sf.PortNames[1]}
		default:
			return xsection.CrossSection{}, errors.New(errors.ErrCodeInvalidConfig,
				"section %d needs two port names, got %d", i, len(sf.PortNames))
		}
		xs.Sections = append(xs.Sections, s)
	}
	if err := xs.Validate(); err != nil {
		return xsection.CrossSection{}, err
	}
	return xs, nil
}

// CrossSection returns a copy of the named cross-section.
func (p *PDK) CrossSection(name string) (xsection.CrossSection, error) {
	xs, ok := p.xs[name]
	if !ok {
		return xsection.CrossSection{}, errors.New(errors.ErrCodeNotFound, "cross-section %q not defined in pdk %s", name, p.Name)
	}
	return xs.Copy(), nil
}

// DefaultCrossSection returns the kit's default cross-section, or the
// default strip when the kit names none.
func (p *PDK) DefaultCrossSection() xsection.CrossSection {
	if xs, err := p.CrossSection(p.defaultXS); err == nil {
		return xs
	}
	return xsection.DefaultStrip()
}

// CrossSectionNames returns the defined cross-section names, sorted.
func (p *PDK) CrossSectionNames() []string {
	names := make([]string, 0, len(p.xs))
	for n := range p.xs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
