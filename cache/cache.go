// Package cache decorates Engine.ReadID with a weak in-memory
// read-through cache: a bits-and-blooms/bloom/v3 filter answers negative
// lookups without touching disk, and the stdlib weak package holds
// values that can be reclaimed under memory pressure without an
// explicit eviction policy.
package cache

import (
	"weak"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/mrivera-dev/cellar"
)

// falsePositiveRate is the bloom filter's target false-positive rate.
// A false positive only costs a wasted engine lookup; it never causes an
// incorrect ErrNotFound, since the filter is consulted only to skip the
// engine, never to affirmatively answer Read.
const falsePositiveRate = 0.01

// Engine decorates a *cellar.Engine with a weak read-through value cache
// and a bloom filter for fast negative lookups.
type Engine struct {
	inner  *cellar.Engine
	bloom  *bloom.BloomFilter
	values map[uint64]weak.Pointer[[]byte]
}

// New wraps inner, seeding the bloom filter from inner.IDs() as it
// stands at construction time. Ids stored after New is called are added
// to the filter as they're observed through Store/Update, since there is
// no handle back into the filter from the raw engine.
func New(inner *cellar.Engine) *Engine {
	n := uint(inner.Size())
	if n == 0 {
		n = 1024
	}
	f := bloom.NewWithEstimates(n, falsePositiveRate)
	for id := range inner.IDs() {
		f.Add(idKey(id))
	}
	return &Engine{
		inner:  inner,
		bloom:  f,
		values: make(map[uint64]weak.Pointer[[]byte]),
	}
}

func idKey(id uint64) []byte {
	return []byte{
		byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24),
		byte(id >> 32), byte(id >> 40), byte(id >> 48), byte(id >> 56),
	}
}

// ReadID returns id's bytes, consulting the weak cache first, then the
// bloom filter (to skip a certain miss), then the underlying engine.
func (e *Engine) ReadID(id uint64) ([]byte, error) {
	if wp, ok := e.values[id]; ok {
		if v := wp.Value(); v != nil {
			return *v, nil
		}
		delete(e.values, id)
	}

	if !e.bloom.Test(idKey(id)) {
		return nil, cellar.ErrNotFound
	}

	data, err := e.inner.ReadID(id)
	if err != nil {
		return nil, err
	}
	cp := append([]byte(nil), data...)
	e.values[id] = weak.Make(&cp)
	return data, nil
}

// Store writes data through to the engine, mints a fresh id, and primes
// both the bloom filter and the weak cache for it.
func (e *Engine) Store(data []byte) (uint64, error) {
	id, err := e.inner.Store(data)
	if err != nil {
		return 0, err
	}
	e.bloom.Add(idKey(id))
	cp := append([]byte(nil), data...)
	e.values[id] = weak.Make(&cp)
	return id, nil
}

// Update writes through to the engine and refreshes the cached value.
func (e *Engine) Update(id uint64, data []byte) error {
	if err := e.inner.Update(id, data); err != nil {
		return err
	}
	e.bloom.Add(idKey(id))
	cp := append([]byte(nil), data...)
	e.values[id] = weak.Make(&cp)
	return nil
}

// Delete removes id from the engine and drops its cached value. The
// bloom filter is never cleared of id: bloom filters support no removal,
// so a deleted id may still test positive, costing a wasted lookup that
// the engine correctly answers with ErrNotFound.
func (e *Engine) Delete(id uint64) error {
	if err := e.inner.Delete(id); err != nil {
		return err
	}
	delete(e.values, id)
	return nil
}

func (e *Engine) Contains(id uint64) bool {
	return e.inner.Contains(id)
}

func (e *Engine) Size() int {
	return e.inner.Size()
}
