// Package observability provides hooks for metrics and tracing of component
// builds, cache traffic and store access.
//
// The package keeps the kernel free of any particular metrics backend:
// consumers register hook implementations once at startup, and the cache,
// generator library and stores call them as events happen.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(factory, name)
//	// ... build the component ...
//	observability.Build().OnBuildComplete(factory, name, polygons, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from component generators.
type BuildHooks interface {
	// OnBuildStart records the start of a cache-miss build.
	OnBuildStart(factory, name string)

	// OnBuildComplete records the outcome of a build. polygons is the number
	// of polygons owned by the component itself, zero on failure.
	OnBuildComplete(factory, name string, polygons int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the component cache.
type CacheHooks interface {
	// OnCacheHit records a lookup answered from the cache.
	OnCacheHit(factory string)

	// OnCacheMiss records a lookup that had to build.
	OnCacheMiss(factory string)

	// OnCacheCollision records a name claimed by two different parameter sets.
	OnCacheCollision(factory, name string)

	// OnCacheClear records a cache reset and how many entries it dropped.
	OnCacheClear(entries int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from byte stores holding reference geometry.
type StoreHooks interface {
	// OnStoreGet records a read and whether it found the key.
	OnStoreGet(ctx context.Context, backend string, found bool, duration time.Duration, err error)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, backend string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(string, string)                               {}
func (NoopBuildHooks) OnBuildComplete(string, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(string)               {}
func (NoopCacheHooks) OnCacheMiss(string)              {}
func (NoopCacheHooks) OnCacheCollision(string, string) {}
func (NoopCacheHooks) OnCacheClear(int)                {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreGet(context.Context, string, bool, time.Duration, error) {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int, time.Duration, error)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any builds.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
