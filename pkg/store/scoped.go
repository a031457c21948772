package store

import (
	"context"
	"time"
)

// Scoped prefixes every key of an inner store, so one backend can hold
// references for several process design kits side by side.
//
//	sky := store.NewScoped(s, "pdk:sky130:")
//	generic := store.NewScoped(s, "pdk:generic:")
type Scoped struct {
	inner  Store
	prefix string
}

// NewScoped wraps inner with prefix. A nil inner is a NullStore.
func NewScoped(inner Store, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullStore()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Key returns the key used in the inner store.
func (s *Scoped) Key(key string) string { return s.prefix + key }

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.Key(key))
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.Key(key), data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.Key(key))
}

// Close closes the inner store.
func (s *Scoped) Close() error { return s.inner.Close() }

var _ Store = (*Scoped)(nil)
