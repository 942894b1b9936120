// Package safe wraps an engine with one coarse mutex, serializing every
// call. The core engine is deliberately not internally synchronized —
// see its package doc — and this is the opt-in decorator for callers who
// need a single engine shared across goroutines and are fine paying for
// it with a single global lock rather than finer-grained concurrency.
package safe

import (
	"iter"
	"sync"

	"github.com/mrivera-dev/cellar"
)

// Engine serializes every operation on an underlying *cellar.Engine
// behind one sync.Mutex.
type Engine struct {
	mu    sync.Mutex
	inner *cellar.Engine
}

// New wraps inner in a mutex-guarded Engine.
func New(inner *cellar.Engine) *Engine {
	return &Engine{inner: inner}
}

func (e *Engine) Reserve(dataLength int64) (cellar.Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Reserve(dataLength)
}

func (e *Engine) Write(idx cellar.Index, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Write(idx, data)
}

func (e *Engine) Read(idx cellar.Index) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Read(idx)
}

func (e *Engine) Free(idx cellar.Index) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Free(idx)
}

func (e *Engine) Store(data []byte) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Store(data)
}

func (e *Engine) ReadID(id uint64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.ReadID(id)
}

func (e *Engine) Update(id uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Update(id, data)
}

func (e *Engine) Delete(id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Delete(id)
}

func (e *Engine) Contains(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Contains(id)
}

func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Size()
}

// IDs snapshots the live id set under the lock and returns an iterator
// over the snapshot, so a caller ranging over it never holds the lock
// during its own processing.
func (e *Engine) IDs() iter.Seq[uint64] {
	e.mu.Lock()
	ids := make([]uint64, 0, e.inner.Size())
	for id := range e.inner.IDs() {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	return func(yield func(uint64) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

func (e *Engine) Compact() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Compact()
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Close()
}
