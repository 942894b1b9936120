package cache

import (
	"path/filepath"
	"testing"

	"github.com/mrivera-dev/cellar"
)

func openTestEngine(t *testing.T) *cellar.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	inner, err := cellar.Open(cellar.Config{FilePath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = inner.Close() })
	return inner
}

func TestCacheStoreAndRead(t *testing.T) {
	e := New(openTestEngine(t))

	id, err := e.Store([]byte("hello"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := e.ReadID(id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCacheRejectsUnknownIDWithoutTouchingEngine(t *testing.T) {
	inner := openTestEngine(t)
	e := New(inner)
	// A closed engine answers ErrClosed, so ErrNotFound below can only
	// come from the bloom filter.
	_ = inner.Close()

	_, err := e.ReadID(123456)
	if err != cellar.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCacheUpdateReflectsNewValue(t *testing.T) {
	e := New(openTestEngine(t))

	id, err := e.Store([]byte("v1"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := e.Update(id, []byte("v2-longer")); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := e.ReadID(id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "v2-longer" {
		t.Errorf("got %q, want %q", got, "v2-longer")
	}
}

func TestCacheDeleteThenReadMisses(t *testing.T) {
	e := New(openTestEngine(t))

	id, err := e.Store([]byte("gone"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := e.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.ReadID(id); err != cellar.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCacheSeedsBloomFromExistingEngine(t *testing.T) {
	inner := openTestEngine(t)
	id, err := inner.Store([]byte("preexisting"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	e := New(inner)
	got, err := e.ReadID(id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "preexisting" {
		t.Errorf("got %q, want %q", got, "preexisting")
	}
}
