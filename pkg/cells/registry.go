package cells

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/pdk"
)

// Factory builds a component from raw parameters.
type Factory func(r *Registry, params map[string]any) (*component.Component, error)

// Registry exposes the catalog by name to callers that only have loosely
// typed parameters, such as the command line and the HTTP server.
//
// Parameters are decoded into the generator's config struct; unknown keys
// are an INVALID_PARAMETER error. Before decoding, a "cross_section" string
// is replaced by the PDK cross-section of that name under "xs", layer names
// under "layer", "opening_layer" and "layers" are resolved through the PDK
// layer table, and a "component" value (a factory name, or an object with
// "factory" and "params") is built recursively.
type Registry struct {
	lib       *Library
	kit       *pdk.PDK
	factories map[string]Factory
}

// NewRegistry creates a registry over lib with the built-in factories. A
// nil kit selects the generic one.
func NewRegistry(lib *Library, kit *pdk.PDK) *Registry {
	if kit == nil {
		kit = pdk.Generic()
	}
	r := &Registry{lib: lib, kit: kit, factories: make(map[string]Factory)}
	for name, f := range builtin {
		r.factories[name] = f
	}
	return r
}

// Library returns the library factories build through.
func (r *Registry) Library() *Library { return r.lib }

// PDK returns the kit names are resolved against.
func (r *Registry) PDK() *pdk.PDK { return r.kit }

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) error {
	if err := errors.ValidateName("factory", name); err != nil {
		return err
	}
	r.factories[name] = f
	return nil
}

// Names returns the factory names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build runs the named factory.
func (r *Registry) Build(name string, params map[string]any) (*component.Component, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown factory %q", name)
	}
	r.lib.Logger.Debug("building", "factory", name, "params", len(params))
	return f(r, params)
}

var builtin = map[string]Factory{
	"straight":           decoded((*Library).Straight),
	"bend_circular":      bendFactory(BendCircular),
	"bend_euler":         bendFactory(BendEuler),
	"bend_s":             decoded((*Library).BendS),
	"sbend_circular":     decoded((*Library).SBendCircular),
	"taper":              decoded((*Library).Taper),
	"transition":         transitionFactory,
	"pad":                decoded((*Library).Pad),
	"via_stack":          decoded((*Library).ViaStack),
	"text":               decoded((*Library).Text),
	"delay_snake_sbend":  decoded((*Library).DelaySnakeSBend),
	"component_sequence": sequenceFactory,

	"straight_heater_meander": decoded((*Library).StraightHeaterMeander),

	"array": withComponent((*Library).Array, func(c *ArrayConfig, child *component.Component) {
		c.Component = child
	}),
	"array_with_fanout": withComponent((*Library).ArrayWithFanout, func(c *ArrayWithFanoutConfig, child *component.Component) {
		c.Component = child
	}),
	"rotate": withComponent((*Library).Rotate, func(c *RotateConfig, child *component.Component) {
		c.Component = child
	}),
	"mirror": withComponent((*Library).Mirror, func(c *MirrorConfig, child *component.Component) {
		c.Component = child
	}),
}

// decoded adapts a generator taking a config struct.
func decoded[C any](gen func(*Library, C) (*component.Component, error)) Factory {
	return func(r *Registry, params map[string]any) (*component.Component, error) {
		var cfg C
		if err := r.Decode(params, &cfg); err != nil {
			return nil, err
		}
		return gen(r.lib, cfg)
	}
}

// withComponent adapts a generator whose config holds a child component.
func withComponent[C any](gen func(*Library, C) (*component.Component, error), set func(*C, *component.Component)) Factory {
	return func(r *Registry, params map[string]any) (*component.Component, error) {
		params = clone(params)
		var child *component.Component
		if ref, ok := params["component"]; ok {
			delete(params, "component")
			c, err := r.component(ref)
			if err != nil {
				return nil, err
			}
			child = c
		}
		var cfg C
		if err := r.Decode(params, &cfg); err != nil {
			return nil, err
		}
		if child != nil {
			set(&cfg, child)
		}
		return gen(r.lib, cfg)
	}
}

func bendFactory(family BendFamily) Factory {
	return func(r *Registry, params map[string]any) (*component.Component, error) {
		var cfg BendConfig
		if err := r.Decode(params, &cfg); err != nil {
			return nil, err
		}
		cfg.Family = family
		return r.lib.Bend(cfg)
	}
}

// transitionFactory resolves "from" and "to" cross-section names.
func transitionFactory(r *Registry, params map[string]any) (*component.Component, error) {
	params = clone(params)
	for _, k := range []string{"from", "to"} {
		if name, ok := params[k].(string); ok {
			xs, err := r.kit.CrossSection(name)
			if err != nil {
				return nil, err
			}
			params[k] = xs
		}
	}
	var cfg TransitionConfig
	if err := r.Decode(params, &cfg); err != nil {
		return nil, err
	}
	return r.lib.Transition(cfg)
}

// sequenceFactory decodes symbols of the form
// {"A": {"component": <ref>, "in": "o1", "out": "o2"}}.
func sequenceFactory(r *Registry, params map[string]any) (*component.Component, error) {
	params = clone(params)
	cfg := ComponentSequenceConfig{Symbols: map[string]Symbol{}}
	if raw, ok := params["symbols"]; ok {
		delete(params, "symbols")
		syms, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "symbols must be an object, got %T", raw)
		}
		for key, v := range syms {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol %q must be an object, got %T", key, v)
			}
			m = clone(m)
			ref := m["component"]
			delete(m, "component")
			child, err := r.component(ref)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", key, err)
			}
			var sym Symbol
			if err := r.Decode(m, &sym); err != nil {
				return nil, fmt.Errorf("symbol %q: %w", key, err)
			}
			sym.Component = child
			cfg.Symbols[key] = sym
		}
	}
	var rest struct {
		Sequence string `json:"sequence"`
	}
	if err := r.Decode(params, &rest); err != nil {
		return nil, err
	}
	cfg.Sequence = rest.Sequence
	return r.lib.ComponentSequence(cfg)
}

// component builds a child from a factory name or a {"factory", "params"}
// object.
func (r *Registry) component(ref any) (*component.Component, error) {
	switch s := ref.(type) {
	case string:
		return r.Build(s, nil)
	case map[string]any:
		name, _ := s["factory"].(string)
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidParameter, "component ref needs a factory name")
		}
		params, _ := s["params"].(map[string]any)
		for k := range s {
			if k != "factory" && k != "params" {
				return nil, errors.New(errors.ErrCodeInvalidParameter, "unknown component ref key %q", k)
			}
		}
		return r.Build(name, params)
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidParameter, "missing component ref")
	}
	return nil, errors.New(errors.ErrCodeInvalidParameter, "component ref must be a name or an object, got %T", ref)
}

// Decode resolves PDK names in params and decodes them into cfg, rejecting
// unknown keys.
func (r *Registry) Decode(params map[string]any, cfg any) error {
	params = clone(params)
	if v, ok := params["cross_section"]; ok {
		name, ok := v.(string)
		if !ok {
			return errors.New(errors.ErrCodeInvalidParameter, "cross_section must be a name, got %T", v)
		}
		if _, dup := params["xs"]; dup {
			return errors.New(errors.ErrCodeInvalidParameter, "cross_section and xs are exclusive")
		}
		xs, err := r.kit.CrossSection(name)
		if err != nil {
			return err
		}
		delete(params, "cross_section")
		params["xs"] = xs
	}
	for _, k := range []string{"layer", "opening_layer"} {
		if name, ok := params[k].(string); ok {
			l, err := r.kit.Layers.Get(name)
			if err != nil {
				return err
			}
			params[k] = l
		}
	}
	if names, ok := params["layers"].([]any); ok {
		resolved := make([]any, len(names))
		for i, n := range names {
			s, ok := n.(string)
			if !ok {
				resolved[i] = n
				continue
			}
			l, err := r.kit.Layers.Get(s)
			if err != nil {
				return err
			}
			resolved[i] = l
		}
		params["layers"] = resolved
	}

	data, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, err, "encode parameters")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, err, "decode parameters")
	}
	return nil
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
