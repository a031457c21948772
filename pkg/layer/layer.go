// Package layer maps symbolic layer names to (number, datatype) pairs.
//
// The kernel only ever handles resolved [Layer] values; name lookup happens
// once, at configuration time, through a [Registry].
package layer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/matzehuels/photonkit/pkg/errors"
)

// Layer identifies a drawing layer by its numeric pair.
type Layer struct {
	Number   int `json:"number" toml:"number"`
	Datatype int `json:"datatype" toml:"datatype"`
}

// L is shorthand for Layer{Number: n, Datatype: d}.
func L(n, d int) Layer { return Layer{Number: n, Datatype: d} }

func (l Layer) String() string { return fmt.Sprintf("%d/%d", l.Number, l.Datatype) }

// Less orders layers by number, then datatype.
func (l Layer) Less(o Layer) bool {
	if l.Number != o.Number {
		return l.Number < o.Number
	}
	return l.Datatype < o.Datatype
}

// Sort orders layers in place by number, then datatype.
func Sort(ls []Layer) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Less(ls[j]) })
}

// Generic layer map used as defaults by the cell catalog.
var (
	WG        = L(1, 0)
	WGClad    = L(111, 0)
	Slab150   = L(2, 0)
	Slab90    = L(3, 0)
	DevRec    = L(68, 0)
	Pin       = L(1, 10)
	Heater    = L(47, 0)
	M1        = L(41, 0)
	M2        = L(45, 0)
	MTop      = L(49, 0)
	ViaC      = L(40, 0)
	Via1      = L(44, 0)
	Via2      = L(43, 0)
	PadOpen   = L(46, 0)
	Text      = L(66, 0)
	FloorPlan = L(64, 0)
)

// Registry is a bidirectional name ↔ layer map. Names and layers are each
// unique within a registry. A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Layer
	byPair map[Layer]string
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Layer),
		byPair: make(map[Layer]string),
	}
}

// Default returns a registry populated with the generic layer map.
func Default() *Registry {
	r := NewRegistry()
	for _, e := range []struct {
		name string
		l    Layer
	}{
		{"WG", WG}, {"WGCLAD", WGClad}, {"SLAB150", Slab150}, {"SLAB90", Slab90},
		{"DEVREC", DevRec}, {"PIN", Pin}, {"HEATER", Heater},
		{"M1", M1}, {"M2", M2}, {"MTOP", MTop},
		{"VIAC", ViaC}, {"VIA1", Via1}, {"VIA2", Via2},
		{"PADOPEN", PadOpen}, {"TEXT", Text}, {"FLOORPLAN", FloorPlan},
	} {
		// The table above has no duplicates.
		_ = r.Register(e.name, e.l)
	}
	return r
}

// Register adds name → l. It fails if either the name or the pair is
// already registered.
func (r *Registry) Register(name string, l Layer) error {
	if err := errors.ValidateName("layer", name); err != nil {
		return err
	}
	if l.Number < 0 || l.Datatype < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layer %s has negative identifiers %s", name, l)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byName[name]; ok {
		return errors.New(errors.ErrCodeInvalidConfig, "layer %s already registered as %s", name, prev)
	}
	if prev, ok := r.byPair[l]; ok {
		return errors.New(errors.ErrCodeInvalidConfig, "layer %s already registered as %s", l, prev)
	}
	r.byName[name] = l
	r.byPair[l] = name
	r.order = append(r.order, name)
	return nil
}

// Get resolves a layer name.
func (r *Registry) Get(name string) (Layer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[name]
	if !ok {
		return Layer{}, errors.New(errors.ErrCodeLayerNotFound, "layer %q not registered", name)
	}
	return l, nil
}

// MustGet is Get for static tables; it panics on unknown names.
func (r *Registry) MustGet(name string) Layer {
	l, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the registered name of l, or its "n/d" form if unnamed.
func (r *Registry) Name(l Layer) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.byPair[l]; ok {
		return n
	}
	return l.String()
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered layers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
