// SPDX-License-Identifier: MIT
package spectrum

import "testing"

func TestBlockPool_Prefilled(t *testing.T) {
	t.Parallel()
	p := NewBlockPool(64, 3)
	if p.Free() != 3 || p.Size() != 64 {
		t.Fatalf("Free=%d Size=%d, want 3 and 64", p.Free(), p.Size())
	}
	for range 3 {
		if b := p.Get(); len(b) != 64 {
			t.Fatalf("Get length %d, want 64", len(b))
		}
	}
	if p.Allocs() != 0 {
		t.Errorf("prefilled Gets allocated %d", p.Allocs())
	}
	p.Get()
	if p.Allocs() != 1 {
		t.Errorf("Allocs = %d after exhausting the pool, want 1", p.Allocs())
	}
}

func TestBlockPool_Reuse(t *testing.T) {
	t.Parallel()
	p := NewBlockPool(8, 1)
	b := p.Get()
	b[0] = 42
	p.Put(b)
	if got := p.Get(); &got[0] != &b[0] {
		t.Error("Get did not return the recycled block")
	}
}

func TestBlockPool_PutRejects(t *testing.T) {
	t.Parallel()
	p := NewBlockPool(8, 1)
	p.Put(make(Block, 4))
	p.Put(make(Block, 8))
	if p.Free() != 1 {
		t.Errorf("Free = %d, want 1: wrong sizes and overflow must be discarded", p.Free())
	}
}

func TestBlockPool_ZeroAllocs(t *testing.T) {
	p := NewBlockPool(2400, 4)
	allocs := testing.AllocsPerRun(100, func() {
		p.Put(p.Get())
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Get/Put, got %.1f", allocs)
	}
}
