// IndexSlotPool supplies file offsets for fresh index slots and recycles
// slots freed by Free. Ordering is LIFO for pop; drainTailMatching
// operates on a copy sorted by offset.
package cellar

import "sort"

type indexSlotPool struct {
	free []int64 // LIFO stack of free slot offsets
}

func newIndexSlotPool() *indexSlotPool {
	return &indexSlotPool{}
}

// pop removes and returns one slot offset if any are free.
func (p *indexSlotPool) pop() (int64, bool) {
	n := len(p.free)
	if n == 0 {
		return 0, false
	}
	off := p.free[n-1]
	p.free = p.free[:n-1]
	return off, true
}

// push returns a slot offset to the pool.
func (p *indexSlotPool) push(offset int64) {
	p.free = append(p.free, offset)
}

// len reports how many slot offsets are currently free.
func (p *indexSlotPool) len() int {
	return len(p.free)
}

// drainTailMatching removes and returns, in ascending offset order, the
// trailing run of free slots for which predicate returns true, such as
// the free slots that fall within a file tail about to be trimmed.
// Engine.Compact does not call it: it never trims index blocks.
func (p *indexSlotPool) drainTailMatching(predicate func(offset int64) bool) []int64 {
	sorted := append([]int64(nil), p.free...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	cut := len(sorted)
	for cut > 0 && predicate(sorted[cut-1]) {
		cut--
	}
	drained := append([]int64(nil), sorted[cut:]...)
	kept := sorted[:cut]

	p.free = p.free[:0]
	p.free = append(p.free, kept...)
	return drained
}
