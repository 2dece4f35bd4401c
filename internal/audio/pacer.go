// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"time"

	"spectrum/internal/spectrum"
)

// pacer calls next once per interval on its own goroutine and pushes the
// result, imitating a device callback for non-hardware sources. A pacer runs
// at most once.
type pacer struct {
	interval time.Duration
	next     func() (spectrum.Block, bool) // false ends the stream after the block
	sink     BlockSink
	counters *sourceCounters

	once    sync.Once
	started bool
	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
}

func newPacer(interval time.Duration, sink BlockSink, counters *sourceCounters, next func() (spectrum.Block, bool)) *pacer {
	return &pacer{
		interval: interval,
		next:     next,
		sink:     sink,
		counters: counters,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *pacer) start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errStreamRunning
	}
	p.started = true
	go p.run()
	return nil
}

func (p *pacer) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			block, more := p.next()
			if block != nil {
				p.counters.push(p.sink, block)
			}
			if !more {
				return
			}
		}
	}
}

// stopAndWait signals the goroutine and waits for it to exit.
func (p *pacer) stopAndWait() {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return
	}
	p.once.Do(func() { close(p.stop) })
	<-p.done
}

// finished is closed when the goroutine exits, on stop or end of stream.
func (p *pacer) finished() <-chan struct{} { return p.done }

func blockInterval(blockSize int, sampleRate float64) time.Duration {
	return time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
}
