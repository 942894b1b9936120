package cellar

import "testing"

func TestIndexSlotPoolPushPopLIFO(t *testing.T) {
	p := newIndexSlotPool()
	p.push(8)
	p.push(32)
	p.push(56)

	off, ok := p.pop()
	if !ok || off != 56 {
		t.Fatalf("got %d ok=%v, want 56", off, ok)
	}
	off, ok = p.pop()
	if !ok || off != 32 {
		t.Fatalf("got %d ok=%v, want 32", off, ok)
	}
}

func TestIndexSlotPoolPopEmpty(t *testing.T) {
	p := newIndexSlotPool()
	if _, ok := p.pop(); ok {
		t.Fatal("expected pop on an empty pool to fail")
	}
}

func TestIndexSlotPoolDrainTailMatching(t *testing.T) {
	p := newIndexSlotPool()
	for _, off := range []int64{8, 32, 56, 1000, 1024, 2000} {
		p.push(off)
	}

	drained := p.drainTailMatching(func(off int64) bool { return off >= 1000 })

	if len(drained) != 3 {
		t.Fatalf("got %d drained, want 3", len(drained))
	}
	want := []int64{1000, 1024, 2000}
	for i, off := range want {
		if drained[i] != off {
			t.Errorf("drained[%d] = %d, want %d", i, drained[i], off)
		}
	}
	if p.len() != 3 {
		t.Fatalf("pool retained %d entries, want 3", p.len())
	}
}

func TestIndexSlotPoolDrainTailMatchingNonePredicateMatches(t *testing.T) {
	p := newIndexSlotPool()
	p.push(8)
	p.push(32)

	drained := p.drainTailMatching(func(off int64) bool { return off > 10000 })
	if len(drained) != 0 {
		t.Fatalf("got %d drained, want 0", len(drained))
	}
	if p.len() != 2 {
		t.Fatalf("pool size = %d, want 2 (unchanged)", p.len())
	}
}
