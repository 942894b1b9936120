// FreeSpaceMap tracks free byte intervals inside the data file with two
// mirrored orderings backed by google/btree BTreeG instances, one keyed
// by Begin, one keyed by (Length, Begin). The two orderings give O(log n)
// coalesce-neighbor and best-fit-by-length queries over the same set of
// Intervals; every Add/remove touches both so every Interval appears in
// both or neither.
package cellar

import (
	"fmt"

	"github.com/google/btree"
)

const freeSpaceBTreeDegree = 32

// freeSpaceMap is the in-memory set of disjoint free byte intervals.
type freeSpaceMap struct {
	byBegin *btree.BTreeG[Interval]
	byLen   *btree.BTreeG[Interval]
}

func newFreeSpaceMap() *freeSpaceMap {
	return &freeSpaceMap{
		byBegin: btree.NewG(freeSpaceBTreeDegree, byBegin),
		byLen:   btree.NewG(freeSpaceBTreeDegree, lengthBegin),
	}
}

// add inserts iv, which must be disjoint from every stored interval.
func (m *freeSpaceMap) add(iv Interval) {
	m.byBegin.ReplaceOrInsert(iv)
	m.byLen.ReplaceOrInsert(iv)
}

func (m *freeSpaceMap) remove(iv Interval) {
	m.byBegin.Delete(iv)
	m.byLen.Delete(iv)
}

// reserve marks iv as used. It finds the stored free interval F with the
// largest Begin <= iv.Begin; fails with ErrPreconditionViolated if none
// exists or if F does not fully contain iv. The remaining head and tail
// of F (if non-empty) are added back.
func (m *freeSpaceMap) reserve(iv Interval) error {
	var candidate Interval
	found := false
	m.byBegin.DescendLessOrEqual(Interval{Begin: iv.Begin, End: iv.Begin}, func(item Interval) bool {
		candidate = item
		found = true
		return false
	})
	if !found || !candidate.Contains(iv) {
		return fmt.Errorf("%w: no free interval contains %+v", ErrPreconditionViolated, iv)
	}

	m.remove(candidate)
	if candidate.Begin < iv.Begin {
		m.add(Interval{Begin: candidate.Begin, End: iv.Begin})
	}
	if iv.End < candidate.End {
		m.add(Interval{Begin: iv.End, End: candidate.End})
	}
	return nil
}

// take returns the smallest stored interval of length >= size, removed
// from the map. The caller is responsible for splitting and returning
// any excess via add.
func (m *freeSpaceMap) take(size int64) (Interval, bool) {
	pivot := Interval{Begin: 0, End: size}
	var result Interval
	found := false
	m.byLen.AscendGreaterOrEqual(pivot, func(item Interval) bool {
		result = item
		found = true
		return false
	})
	if !found {
		return Interval{}, false
	}
	m.remove(result)
	return result, true
}

// mergeAll sorts intervals by Begin and merges adjacent pairs where
// left.End == right.Begin, rebuilding both orderings from the merged
// sequence.
func (m *freeSpaceMap) mergeAll() {
	var sorted []Interval
	m.byBegin.Ascend(func(item Interval) bool {
		sorted = append(sorted, item)
		return true
	})
	if len(sorted) == 0 {
		return
	}

	merged := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if cur.End == next.Begin {
			cur.End = next.End
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)

	m.byBegin.Clear(false)
	m.byLen.Clear(false)
	for _, iv := range merged {
		m.add(iv)
	}
}

// trimTail repeatedly removes the tail interval whose End == fileEnd,
// setting fileEnd := interval.Begin, and returns the final fileEnd so
// the caller can truncate the file.
func (m *freeSpaceMap) trimTail(fileEnd int64) int64 {
	for {
		last, ok := m.byBegin.Max()
		if !ok || last.End != fileEnd {
			return fileEnd
		}
		m.remove(last)
		fileEnd = last.Begin
	}
}

// len reports the number of free intervals currently tracked.
func (m *freeSpaceMap) len() int {
	return m.byBegin.Len()
}
