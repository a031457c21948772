// Package cells is the generator catalog: thin factories that pick
// cross-sections and paths with sensible defaults and hand them to the
// kernel.
//
// Every generator has its own configuration struct. A call fills zero fields
// with defaults, validates the result and only then asks the [Library]'s
// cache for the component, so equal configurations share one instance and
// invalid ones never reach geometry code.
//
// # Usage
//
//	lib := cells.NewLibrary(cache.New(), logger)
//	bend, err := lib.Bend(cells.BendConfig{Family: cells.BendEuler, Radius: 10})
//	if err != nil {
//	    return err
//	}
//
// Generators that compose other generators (arrays, sequences, snakes)
// build their children through the same library, so children are shared
// across parents.
package cells

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photonkit/pkg/cache"
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/extrude"
	"github.com/matzehuels/photonkit/pkg/path"
	"github.com/matzehuels/photonkit/pkg/xsection"
)

// Library builds catalog components through an injected cache.
type Library struct {
	Cache  *cache.Cache
	Logger *log.Logger
}

// NewLibrary creates a library. A nil cache gets a private one; a nil
// logger discards output.
func NewLibrary(c *cache.Cache, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c == nil {
		c = cache.New(cache.WithLogger(logger))
	}
	return &Library{Cache: c, Logger: logger}
}

// config is implemented by every generator configuration.
type config interface {
	setDefaults()
	Validate() error
}

// build applies defaults, validates cfg and returns the cached component
// for factory, building it with fn on a miss.
func build[C config](l *Library, factory string, cfg C, fn func(name string, cfg C) (*component.Component, error)) (*component.Component, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", factory, err)
	}
	c, err := l.Cache.GetOrBuild(factory, cfg, func(name string) (*component.Component, error) {
		return fn(name, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", factory, err)
	}
	return c, nil
}

// defaultXS fills an unset cross-section with the default strip.
func defaultXS(xs *xsection.CrossSection) {
	if len(xs.Sections) == 0 {
		*xs = xsection.DefaultStrip()
	}
}

// extruded sweeps xs along p into a finalized component named name. The
// path length is recorded as "length" next to the entries of info, and cfg
// is kept as the component settings.
func extruded(name string, cfg any, xs xsection.CrossSection, p *path.Path, info map[string]any, opts ...extrude.Option) (*component.Component, error) {
	b := component.NewBuilder(name)
	if _, err := extrude.AddTo(b, xs, p, opts...); err != nil {
		return nil, err
	}
	if err := b.SetInfo("length", p.Length()); err != nil {
		return nil, err
	}
	for k, v := range info {
		if err := b.SetInfo(k, v); err != nil {
			return nil, err
		}
	}
	if err := b.SetSettings(cfg); err != nil {
		return nil, err
	}
	return b.Finalize()
}
