package layer

import (
	"testing"

	"github.com/matzehuels/photonkit/pkg/errors"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("WG", L(1, 0)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("SLAB", L(3, 0)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Get("WG")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != L(1, 0) {
		t.Errorf("Get(WG) = %v, want %v", got, L(1, 0))
	}
	if name := r.Name(L(3, 0)); name != "SLAB" {
		t.Errorf("Name(3/0) = %v, want SLAB", name)
	}
	if name := r.Name(L(9, 9)); name != "9/9" {
		t.Errorf("Name(9/9) = %v, want 9/9", name)
	}
	if names := r.Names(); len(names) != 2 || names[0] != "WG" {
		t.Errorf("Names() = %v, want [WG SLAB]", names)
	}
}

func TestRegistryUniqueness(t *testing.T) {
	tests := []struct {
		name  string
		layer string
		l     Layer
	}{
		{"duplicate name", "WG", L(2, 0)},
		{"duplicate pair", "CORE", L(1, 0)},
		{"negative", "NEG", L(-1, 0)},
		{"bad name", "a b", L(5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if err := r.Register("WG", L(1, 0)); err != nil {
				t.Fatal(err)
			}
			if err := r.Register(tt.layer, tt.l); err == nil {
				t.Error("Register() error = nil, want error")
			}
			if r.Len() != 1 {
				t.Errorf("Len() = %d, want 1", r.Len())
			}
		})
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Default().Get("NOPE")
	if !errors.Is(err, errors.ErrCodeLayerNotFound) {
		t.Errorf("Get() error = %v, want %v", err, errors.ErrCodeLayerNotFound)
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	if got := r.MustGet("WG"); got != WG {
		t.Errorf("MustGet(WG) = %v, want %v", got, WG)
	}
	if r.Len() != 16 {
		t.Errorf("Len() = %d, want 16", r.Len())
	}
}

func TestSort(t *testing.T) {
	ls := []Layer{L(3, 0), L(1, 10), L(1, 0)}
	Sort(ls)
	want := []Layer{L(1, 0), L(1, 10), L(3, 0)}
	for i := range want {
		if ls[i] != want[i] {
			t.Errorf("Sort()[%d] = %v, want %v", i, ls[i], want[i])
		}
	}
}
