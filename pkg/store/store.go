// Package store provides byte stores for reference geometry digests and
// exported layouts.
//
// Stores back the geometry regression checks in pkg/difftest and the CLI's
// persisted references. The kernel itself never touches a store.
//
// # Backends
//
//   - [FileStore]: one JSON file per key under a directory (CLI default)
//   - [NullStore]: stores nothing
//   - [RedisStore]: Redis, shared between CI runners
//   - [MongoStore]: a MongoDB collection
//
// [Open] selects a backend from a URL: "file:///path", "null:",
// "redis://host:6379/0" or "mongodb://host:27017/db".
package store

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/matzehuels/photonkit/pkg/observability"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported is returned for an unknown backend scheme.
	ErrUnsupported = errors.New("unsupported store backend")
)

// Store is a key/value byte store with optional expiry.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Open returns the store described by rawURL, instrumented with the
// registered store hooks.
func Open(ctx context.Context, rawURL string) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var s Store
	switch u.Scheme {
	case "", "file":
		dir := u.Path
		if u.Scheme == "" {
			dir = rawURL
		}
		s, err = NewFileStore(dir)
	case "null":
		s = NewNullStore()
	case "redis", "rediss":
		s, err = NewRedisStore(ctx, rawURL)
	case "mongodb", "mongodb+srv":
		s, err = NewMongoStore(ctx, rawURL)
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, err
	}
	backend := u.Scheme
	if backend == "" {
		backend = "file"
	}
	return Instrument(s, backend), nil
}

// Instrument wraps s so every Get and Set reports to observability.Store().
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	data, ok, err := i.Store.Get(ctx, key)
	observability.Store().OnStoreGet(ctx, i.backend, ok, time.Since(start), err)
	return data, ok, err
}

func (i *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	start := time.Now()
	err := i.Store.Set(ctx, key, data, ttl)
	observability.Store().OnStoreSet(ctx, i.backend, len(data), time.Since(start), err)
	return err
}
