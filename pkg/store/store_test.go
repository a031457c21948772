package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/photonkit/pkg/observability"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "difftest:straight_1a2b3c4d"

	if _, hit, err := s.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := s.Set(ctx, key, []byte("digest"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := s.Get(ctx, key)
	if err != nil || !hit || string(data) != "digest" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := s.Set(ctx, key, []byte("changed"), 0); err != nil {
		t.Fatalf("Set(overwrite) error = %v", err)
	}
	if data, _, _ := s.Get(ctx, key); string(data) != "changed" {
		t.Errorf("Get() after overwrite = %q, want %q", data, "changed")
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := s.Get(ctx, key); hit {
		t.Error("Get() hit after Delete")
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	if err := s.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("expired entry was returned")
	}
	if _, err := os.Stat(s.path("k")); !os.IsNotExist(err) {
		t.Errorf("expired entry not removed: %v", err)
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	_ = s.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(s.path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := s.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want miss", hit, err)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	if err := s.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("NullStore should not store data")
	}
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	inner, _ := NewFileStore(t.TempDir())
	a := NewScoped(inner, "pdk:a:")
	b := NewScoped(inner, "pdk:b:")
	exercise(t, a)

	_ = a.Set(ctx, "k", []byte("a"), 0)
	_ = b.Set(ctx, "k", []byte("b"), 0)
	if data, _, _ := a.Get(ctx, "k"); string(data) != "a" {
		t.Errorf("scope a = %q, want a", data)
	}
	if data, _, _ := inner.Get(ctx, "pdk:b:k"); string(data) != "b" {
		t.Errorf("inner pdk:b:k = %q, want b", data)
	}
	if got := NewScoped(nil, "x:").Key("k"); got != "x:k" {
		t.Errorf("Key() = %q, want x:k", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, raw := range []string{dir, "file://" + dir, "null:"} {
		s, err := Open(ctx, raw)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", raw, err)
		}
		s.Close()
	}
	if _, err := Open(ctx, "ftp://example.com/x"); err != ErrUnsupported {
		t.Errorf("Open(ftp) error = %v, want %v", err, ErrUnsupported)
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	mu       sync.Mutex
	gets     int
	sets     int
	backends []string
}

func (h *recordingHooks) OnStoreGet(_ context.Context, backend string, _ bool, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gets++
	h.backends = append(h.backends, backend)
}

func (h *recordingHooks) OnStoreSet(_ context.Context, backend string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func TestInstrumentedHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetStoreHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	s, err := Open(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Set(ctx, "k", []byte("v"), 0)
	_, _, _ = s.Get(ctx, "k")
	if h.gets != 1 || h.sets != 1 || h.backends[0] != "file" {
		t.Errorf("hooks gets=%d sets=%d backends=%v", h.gets, h.sets, h.backends)
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := []struct{ url, want string }{
		{"mongodb://localhost:27017", DefaultMongoDatabase},
		{"mongodb://localhost:27017/", DefaultMongoDatabase},
		{"mongodb://localhost:27017/layouts", "layouts"},
		{"mongodb://u:p@h1,h2/layouts?replicaSet=rs0", "layouts"},
	}
	for _, tt := range tests {
		if got := mongoDatabase(tt.url); got != tt.want {
			t.Errorf("mongoDatabase(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("PHOTONKIT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PHOTONKIT_TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestMongoStore(t *testing.T) {
	url := os.Getenv("PHOTONKIT_TEST_MONGO_URL")
	if url == "" {
		t.Skip("PHOTONKIT_TEST_MONGO_URL not set")
	}
	s, err := NewMongoStore(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exercise(t, s)
}
