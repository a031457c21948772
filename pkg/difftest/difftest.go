// Package difftest guards generated layouts against unintended geometry
// changes.
//
// A [Checker] hashes the flattened geometry of a component and compares it
// with a reference kept in a [store.Store]. The first check of a name
// records the reference; later checks report GEOMETRY_CHANGED when the
// hash differs, together with per-layer area deltas. References hold the
// full exported layout, so a changed component can be inspected against
// what it used to be.
//
//	s, _ := store.Open(ctx, "file:///tmp/refs")
//	chk := difftest.New(s)
//	res, err := chk.Check(ctx, c)
//	if errors.Is(err, errors.ErrCodeGeometryChanged) {
//	    for _, d := range res.Deltas { ... }
//	}
package difftest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/export"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/store"
)

// DefaultPrecision is the coordinate grid hashes are taken on.
const DefaultPrecision = 1e-4

// Status is the outcome of one check.
type Status string

const (
	StatusNew     Status = "new"
	StatusMatch   Status = "match"
	StatusChanged Status = "changed"
	StatusUpdated Status = "updated"
)

// Reference is the stored record of a component's geometry.
type Reference struct {
	Hash      string         `json:"hash"`
	Precision float64        `json:"precision"`
	Recorded  time.Time      `json:"recorded"`
	Layout    *export.Layout `json:"layout"`
}

// Delta is the area change of one layer.
type Delta struct {
	Layer  layer.Layer `json:"layer"`
	Name   string      `json:"name"`
	Before float64     `json:"before"`
	After  float64     `json:"after"`
}

// Result describes one check.
type Result struct {
	Name      string  `json:"name"`
	Status    Status  `json:"status"`
	Hash      string  `json:"hash"`
	Reference string  `json:"reference,omitempty"`
	Deltas    []Delta `json:"deltas,omitempty"`
}

// Checker compares components with stored references.
type Checker struct {
	store     store.Store
	precision float64
	update    bool
	layers    *layer.Registry
	logger    *log.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithPrecision sets the hashing grid.
func WithPrecision(p float64) Option { return func(c *Checker) { c.precision = p } }

// WithUpdate makes the checker overwrite changed references instead of
// failing.
func WithUpdate() Option { return func(c *Checker) { c.update = true } }

// WithLayers names layers in stored layouts and deltas.
func WithLayers(r *layer.Registry) Option { return func(c *Checker) { c.layers = r } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *Checker) { c.logger = l } }

// New creates a checker over s. A nil store keeps nothing, so every check
// reports StatusNew.
func New(s store.Store, opts ...Option) *Checker {
	if s == nil {
		s = store.NewNullStore()
	}
	c := &Checker{store: s, precision: DefaultPrecision}
	for _, o := range opts {
		o(c)
	}
	if c.layers == nil {
		c.layers = layer.Default()
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Check compares comp with its reference, recording one if none exists.
// A differing hash returns the result and a GEOMETRY_CHANGED error, unless
// the checker updates references.
func (c *Checker) Check(ctx context.Context, comp *component.Component) (Result, error) {
	res := Result{Name: comp.Name(), Hash: comp.HashGeometry(c.precision)}

	ref, ok, err := c.load(ctx, comp.Name())
	if err != nil {
		return res, err
	}
	switch {
	case !ok:
		res.Status = StatusNew
	case ref.Hash == res.Hash && ref.Precision == c.precision:
		res.Status = StatusMatch
		c.logger.Debug("geometry unchanged", "name", res.Name, "hash", res.Hash[:12])
		return res, nil
	default:
		res.Reference = ref.Hash
		res.Deltas = c.deltas(ref.Layout, comp)
		if !c.update {
			res.Status = StatusChanged
			c.logger.Warn("geometry changed", "name", res.Name, "layers", len(res.Deltas))
			return res, errors.New(errors.ErrCodeGeometryChanged,
				"%s: geometry hash %s differs from reference %s", res.Name, short(res.Hash), short(ref.Hash))
		}
		res.Status = StatusUpdated
	}

	if err := c.save(ctx, comp, res.Hash); err != nil {
		return res, err
	}
	c.logger.Info("recorded reference", "name", res.Name, "status", res.Status)
	return res, nil
}

// CheckAll checks every component and returns all results. The error is the
// first failure; checking continues past GEOMETRY_CHANGED.
func (c *Checker) CheckAll(ctx context.Context, comps ...*component.Component) ([]Result, error) {
	results := make([]Result, 0, len(comps))
	var first error
	for _, comp := range comps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := c.Check(ctx, comp)
		results = append(results, res)
		if err != nil {
			if !errors.Is(err, errors.ErrCodeGeometryChanged) {
				return results, err
			}
			if first == nil {
				first = err
			}
		}
	}
	return results, first
}

// Forget deletes the reference of name.
func (c *Checker) Forget(ctx context.Context, name string) error {
	return store.RetryWithBackoff(ctx, func() error {
		return c.store.Delete(ctx, key(name))
	})
}

// Reference returns the stored reference of name.
func (c *Checker) Reference(ctx context.Context, name string) (*Reference, error) {
	ref, ok, err := c.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no reference for %s", name)
	}
	return ref, nil
}

func key(name string) string { return "difftest:" + name }

func (c *Checker) load(ctx context.Context, name string) (*Reference, bool, error) {
	var (
		data []byte
		ok   bool
	)
	err := store.RetryWithBackoff(ctx, func() error {
		var err error
		data, ok, err = c.store.Get(ctx, key(name))
		return err
	})
	if err != nil || !ok {
		return nil, false, err
	}
	var ref Reference
	if err := json.Unmarshal(data, &ref); err != nil {
		c.logger.Warn("discarding unreadable reference", "name", name, "err", err)
		return nil, false, nil
	}
	return &ref, true, nil
}

func (c *Checker) save(ctx context.Context, comp *component.Component, hash string) error {
	data, err := json.Marshal(Reference{
		Hash:      hash,
		Precision: c.precision,
		Recorded:  time.Now().UTC(),
		Layout:    export.FromComponent(comp, c.layers),
	})
	if err != nil {
		return fmt.Errorf("encode reference %s: %w", comp.Name(), err)
	}
	return store.RetryWithBackoff(ctx, func() error {
		return c.store.Set(ctx, key(comp.Name()), data, 0)
	})
}

// deltas lists the layers whose area moved by more than the hashing grid.
func (c *Checker) deltas(before *export.Layout, comp *component.Component) []Delta {
	areas := make(map[layer.Layer]*Delta)
	var order []layer.Layer
	get := func(l layer.Layer) *Delta {
		d, ok := areas[l]
		if !ok {
			d = &Delta{Layer: l, Name: c.layers.Name(l)}
			areas[l] = d
			order = append(order, l)
		}
		return d
	}
	if before != nil {
		for _, ld := range before.Layers {
			d := get(ld.Layer)
			for _, pg := range ld.Polygons {
				d.Before += pg.Area()
			}
		}
	}
	f := comp.Flatten()
	for _, l := range f.Layers {
		get(l).After = f.Area(l)
	}

	layer.Sort(order)
	var out []Delta
	for _, l := range order {
		d := areas[l]
		if math.Abs(d.After-d.Before) > c.precision {
			out = append(out, *d)
		}
	}
	return out
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
