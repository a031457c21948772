package xsection

import (
	"testing"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		xs      CrossSection
		wantErr bool
	}{
		{"strip", DefaultStrip(), false},
		{"rib", Rib(0.5, 6, layer.WG, layer.Slab90, 10), false},
		{"metal", Metal(10, layer.M1), false},
		{"empty", CrossSection{}, true},
		{"zero width", Strip(0, layer.WG, 10), true},
		{"negative radius", Strip(0.5, layer.WG, -1), true},
		{"same port names", DefaultStrip().WithPortNames("o1", "o1"), true},
		{"bad port name", DefaultStrip().WithPortNames("o 1", "o2"), true},
		{"duplicate across strands", DefaultStrip().Add(Section{Width: 1, Layer: layer.Heater, PortNames: [2]string{"o2", "e2"}}), true},
		{"unsorted stops", New(0, Section{Width: 1, Layer: layer.WG, WidthStops: []Stop{{0.8, 1}, {0.2, 2}}}), true},
		{"stop out of range", New(0, Section{Width: 1, Layer: layer.WG, WidthStops: []Stop{{0, 1}, {1.5, 2}}}), true},
		{"negative width stop", New(0, Section{Width: 1, Layer: layer.WG, WidthStops: []Stop{{0, -1}}}), true},
		{"negative offset stop", New(0, Section{Width: 1, Layer: layer.WG, OffsetStops: []Stop{{0, -1}}}), false},
		{"bad port type", New(0, Section{Width: 1, Layer: layer.WG, PortType: "x"}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.xs.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidParameter)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	s := Section{Width: 1, WidthStops: []Stop{{0, 1}, {0.5, 3}, {1, 2}}}
	tests := []struct {
		f, want float64
	}{
		{-1, 1}, {0, 1}, {0.25, 2}, {0.5, 3}, {0.75, 2.5}, {1, 2}, {2, 2},
	}
	for _, tt := range tests {
		if got := s.WidthAt(tt.f); got != tt.want {
			t.Errorf("WidthAt(%g) = %g, want %g", tt.f, got, tt.want)
		}
	}
	if got := (Section{Width: 0.7}).WidthAt(0.3); got != 0.7 {
		t.Errorf("WidthAt(untapered) = %g, want 0.7", got)
	}
}

func TestValueSemantics(t *testing.T) {
	xs := DefaultStrip().Taper(0.5, 1)
	wide := xs.WithWidth(2)
	wide.Sections[0].WidthStops[0].Value = 9

	if xs.Sections[0].WidthStops[0].Value != 0.5 {
		t.Errorf("modifying a copy changed the original: %v", xs.Sections[0].WidthStops)
	}
	if xs.Width() != 0.5 {
		t.Errorf("Width() = %g, want 0.5", xs.Width())
	}
	if !xs.Equal(DefaultStrip().Taper(0.5, 1)) {
		t.Error("equal cross-sections compare unequal")
	}
	if xs.Equal(wide) {
		t.Error("different cross-sections compare equal")
	}
}

func TestMirror(t *testing.T) {
	xs := DefaultStrip().Add(Section{Width: 1, Offset: 2, Layer: layer.Heater, OffsetStops: []Stop{{0, 2}, {1, 3}}})
	m := xs.Mirror()
	if got := m.Sections[1].OffsetAt(0.5); got != -2.5 {
		t.Errorf("mirrored OffsetAt(0.5) = %g, want -2.5", got)
	}
	if got := xs.Sections[1].OffsetAt(0.5); got != 2.5 {
		t.Errorf("original OffsetAt(0.5) = %g, want 2.5", got)
	}
	if !m.Mirror().Equal(xs) {
		t.Error("double mirror is not the identity")
	}
}

func TestTransition(t *testing.T) {
	a := Strip(0.5, layer.WG, 10)
	b := Strip(2, layer.WG, 25)
	tr, err := Transition(a, b)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got := tr.Main().WidthAt(0); got != 0.5 {
		t.Errorf("WidthAt(0) = %g, want 0.5", got)
	}
	if got := tr.Main().WidthAt(1); got != 2 {
		t.Errorf("WidthAt(1) = %g, want 2", got)
	}
	if tr.Radius != 25 {
		t.Errorf("Radius = %g, want 25", tr.Radius)
	}

	if _, err := Transition(a, Rib(0.5, 6, layer.WG, layer.Slab90, 10)); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Transition(strand count) error = %v", err)
	}
	if _, err := Transition(a, Strip(0.5, layer.Slab150, 10)); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Transition(layer) error = %v", err)
	}
}

func TestSectionPortType(t *testing.T) {
	xs := DefaultStrip().Add(Section{Width: 1, Offset: 2, Layer: layer.Heater, PortType: port.Electrical})
	if got := xs.SectionPortType(0); got != port.Optical {
		t.Errorf("SectionPortType(0) = %v, want %v", got, port.Optical)
	}
	if got := xs.SectionPortType(1); got != port.Electrical {
		t.Errorf("SectionPortType(1) = %v, want %v", got, port.Electrical)
	}
	if got := Metal(5, layer.M2).SectionPortType(0); got != port.Electrical {
		t.Errorf("Metal SectionPortType = %v, want %v", got, port.Electrical)
	}
}
