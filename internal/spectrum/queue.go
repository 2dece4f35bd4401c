// SPDX-License-Identifier: MIT
package spectrum

import "sync/atomic"

// Block is one callback's worth of mono samples. A pushed block must not be
// modified by the producer afterwards.
type Block []float64

// BlockQueue is a bounded single-producer/single-consumer FIFO. Pushes
// never block: when the queue is full the incoming block is discarded.
type BlockQueue struct {
	ch      chan Block
	dropped atomic.Uint64
	pushed  atomic.Uint64
}

// NewBlockQueue creates a queue holding at most capacity blocks. Capacities
// below one are raised to one.
func NewBlockQueue(capacity int) *BlockQueue {
	return &BlockQueue{ch: make(chan Block, max(capacity, 1))}
}

// TryPush enqueues b and reports whether it was accepted. It is safe to call
// from a real-time context.
func (q *BlockQueue) TryPush(b Block) bool {
	select {
	case q.ch <- b:
		q.pushed.Add(1)
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// TryPopAll appends the blocks queued at the time of the call to dst in
// arrival order and returns the extended slice. Blocks pushed while it runs
// are left for the next call.
func (q *BlockQueue) TryPopAll(dst []Block) []Block {
	for n := len(q.ch); n > 0; n-- {
		select {
		case b := <-q.ch:
			dst = append(dst, b)
		default:
			return dst
		}
	}
	return dst
}

// Len returns the number of blocks waiting.
func (q *BlockQueue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *BlockQueue) Cap() int { return cap(q.ch) }

// Dropped returns the number of blocks rejected because the queue was full.
func (q *BlockQueue) Dropped() uint64 { return q.dropped.Load() }

// Pushed returns the number of blocks accepted.
func (q *BlockQueue) Pushed() uint64 { return q.pushed.Load() }
