// Package cache memoizes component construction by factory and canonical
// parameters.
//
// A [Cache] guarantees that two requests with the same factory and
// semantically equal parameters return the same *component.Component, that
// concurrent first requests for a key run the build function once, and that
// a failed build leaves nothing behind. Every cached component owns a unique
// name; a second parameter set claiming an existing name is rejected with
// CACHE_COLLISION.
//
// # Usage
//
//	c := cache.New(cache.WithLogger(logger))
//	comp, err := c.GetOrBuild("straight", cfg, func(name string) (*component.Component, error) {
//	    return extrude.Component(name, xs, p)
//	})
//
// The cache is an explicit service object: generator libraries receive one
// at construction and tests call [Cache.Clear] between cases.
package cache

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/observability"
)

// BuildFunc constructs the component for a cache miss. name is the name the
// component must carry.
type BuildFunc func(name string) (*component.Component, error)

// Stats is a snapshot of cache counters since creation or the last Clear.
type Stats struct {
	Entries    int `json:"entries"`
	Hits       int `json:"hits"`
	Misses     int `json:"misses"`
	Builds     int `json:"builds"`
	Failures   int `json:"failures"`
	Collisions int `json:"collisions"`
}

type entry struct {
	key       string
	factory   string
	component *component.Component
	elapsed   time.Duration
}

// Cache is a concurrency-safe component memo.
type Cache struct {
	digits int
	logger *log.Logger

	mu     sync.Mutex
	gen    uint64
	byKey  map[string]*entry
	byName map[string]string
	stats  Stats

	flight singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for hit/miss/build events.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDigits sets the decimal places floats are rounded to in keys.
func WithDigits(n int) Option {
	return func(c *Cache) {
		if n >= 0 {
			c.digits = n
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		digits: DefaultDigits,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		byKey:  make(map[string]*entry),
		byName: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the cache key of factory and params.
func (c *Cache) Key(factory string, params any) (string, error) {
	if err := errors.ValidateName("factory", factory); err != nil {
		return "", err
	}
	canon, err := Canonicalize(params, c.digits)
	if err != nil {
		return "", err
	}
	return hashKey(factory, canon), nil
}

// DefaultName returns the name GetOrBuild assigns to a component built from
// key: the factory followed by the first eight hex digits of the digest.
func DefaultName(key string) string {
	factory, digest := splitKey(key)
	return fmt.Sprintf("%s_%s", factory, digest[:8])
}

func splitKey(key string) (factory, digest string) {
	i := len(key) - 64 - 1
	return key[:i], key[i+1:]
}

// GetOrBuild returns the component cached for (factory, params), building
// it with build under the default name on first request.
func (c *Cache) GetOrBuild(factory string, params any, build BuildFunc) (*component.Component, error) {
	return c.GetOrBuildNamed(factory, "", params, build)
}

// GetOrBuildNamed is GetOrBuild with an explicit component name. An empty
// name selects the default. A name that differs from the one the same
// parameters are already cached under is a CACHE_COLLISION.
func (c *Cache) GetOrBuildNamed(factory, name string, params any, build BuildFunc) (*component.Component, error) {
	key, err := c.Key(factory, params)
	if err != nil {
		return nil, err
	}
	explicit := name != ""
	if !explicit {
		name = DefaultName(key)
	}
	if err := errors.ValidateName("component", name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if e, ok := c.byKey[key]; ok {
		if explicit && e.component.Name() != name {
			c.stats.Collisions++
			c.mu.Unlock()
			return nil, c.renamed(factory, name, e.component.Name())
		}
		c.stats.Hits++
		c.mu.Unlock()
		observability.Cache().OnCacheHit(factory)
		c.logger.Debug("cache hit", "factory", factory, "name", e.component.Name())
		return e.component, nil
	}
	if other, ok := c.byName[name]; ok && other != key {
		c.stats.Collisions++
		c.mu.Unlock()
		return nil, c.collision(factory, name)
	}
	c.stats.Misses++
	gen := c.gen
	c.mu.Unlock()
	observability.Cache().OnCacheMiss(factory)

	v, err, shared := c.flight.Do(fmt.Sprintf("%d/%s", gen, key), func() (any, error) {
		return c.build(gen, key, factory, name, build)
	})
	if err != nil {
		return nil, err
	}
	comp := v.(*component.Component)
	if shared {
		c.logger.Debug("joined in-flight build", "factory", factory, "name", comp.Name())
	}
	if explicit && comp.Name() != name {
		c.mu.Lock()
		c.stats.Collisions++
		c.mu.Unlock()
		return nil, c.renamed(factory, name, comp.Name())
	}
	return comp, nil
}

func (c *Cache) build(gen uint64, key, factory, name string, build BuildFunc) (*component.Component, error) {
	c.mu.Lock()
	if e, ok := c.byKey[key]; ok {
		c.mu.Unlock()
		return e.component, nil
	}
	c.mu.Unlock()

	if build == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "no build function for %s", factory)
	}
	observability.Build().OnBuildStart(factory, name)
	start := time.Now()
	comp, err := build(name)
	elapsed := time.Since(start)
	if err == nil && comp == nil {
		err = errors.New(errors.ErrCodeInternal, "factory %s returned no component", factory)
	}
	polygons := 0
	if comp != nil {
		for _, l := range comp.OwnLayers() {
			polygons += len(comp.Polygons(l))
		}
	}
	observability.Build().OnBuildComplete(factory, name, polygons, elapsed, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Builds++
	if err != nil {
		c.stats.Failures++
		c.logger.Debug("build failed", "factory", factory, "name", name, "err", err)
		return nil, err
	}
	if c.gen != gen {
		// Cleared while building: hand the result back without caching it.
		return comp, nil
	}
	if other, ok := c.byName[comp.Name()]; ok && other != key {
		c.stats.Collisions++
		return nil, c.collision(factory, comp.Name())
	}
	c.byKey[key] = &entry{key: key, factory: factory, component: comp, elapsed: elapsed}
	c.byName[comp.Name()] = key
	c.logger.Debug("built component", "factory", factory, "name", comp.Name(), "duration", elapsed)
	return comp, nil
}

func (c *Cache) collision(factory, name string) error {
	observability.Cache().OnCacheCollision(factory, name)
	c.logger.Warn("cache name collision", "factory", factory, "name", name)
	return errors.New(errors.ErrCodeCacheCollision,
		"component name %q is already cached with different parameters", name)
}

func (c *Cache) renamed(factory, name, cached string) error {
	observability.Cache().OnCacheCollision(factory, name)
	c.logger.Warn("cache name collision", "factory", factory, "name", name, "cached", cached)
	return errors.New(errors.ErrCodeCacheCollision,
		"parameters requested as %q are already cached as %q", name, cached)
}

// Lookup returns the cached component named name.
func (c *Cache) Lookup(name string) (*component.Component, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.byKey[key].component, true
}

// Names returns the names of all cached components, sorted.
func (c *Cache) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of cached components.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.byKey)
	return s
}

// Clear drops every entry and resets the counters. Builds in flight finish
// but are not cached.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.byKey)
	c.gen++
	c.byKey = make(map[string]*entry)
	c.byName = make(map[string]string)
	c.stats = Stats{}
	c.mu.Unlock()

	observability.Cache().OnCacheClear(n)
	c.logger.Debug("cache cleared", "entries", n)
}

// Entry describes one cached component.
type Entry struct {
	Name     string        `json:"name"`
	Factory  string        `json:"factory"`
	Key      string        `json:"key"`
	Duration time.Duration `json:"duration"`
}

// Entries returns the cached components sorted by name.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.byKey))
	for _, e := range c.byKey {
		out = append(out, Entry{Name: e.component.Name(), Factory: e.factory, Key: e.key, Duration: e.elapsed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
