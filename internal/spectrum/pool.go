// SPDX-License-Identifier: MIT
package spectrum

import "sync/atomic"

// BlockPool recycles fixed-size blocks between the producer and the
// analysis side. Get and Put never block and are safe to call from a
// real-time context.
type BlockPool struct {
	size   int
	free   chan Block
	allocs atomic.Uint64
}

// NewBlockPool creates a pool of capacity blocks of size samples, all
// allocated up front.
func NewBlockPool(size, capacity int) *BlockPool {
	p := &BlockPool{size: size, free: make(chan Block, max(capacity, 1))}
	for range cap(p.free) {
		p.free <- make(Block, size)
	}
	return p
}

// Get returns a free block. When the pool is exhausted a new block is
// allocated and counted.
func (p *BlockPool) Get() Block {
	select {
	case b := <-p.free:
		return b
	default:
		p.allocs.Add(1)
		return make(Block, p.size)
	}
}

// Put returns b to the pool. Blocks of another size, or beyond the pool's
// capacity, are left to the garbage collector.
func (p *BlockPool) Put(b Block) {
	if len(b) != p.size {
		return
	}
	select {
	case p.free <- b:
	default:
	}
}

// Size returns the block length served by the pool.
func (p *BlockPool) Size() int { return p.size }

// Free returns the number of blocks ready for Get.
func (p *BlockPool) Free() int { return len(p.free) }

// Allocs returns how many times Get had to allocate.
func (p *BlockPool) Allocs() uint64 { return p.allocs.Load() }
