// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"sync/atomic"
	"time"

	"spectrum/internal/config"
)

// Result is the output of one productive tick.
type Result struct {
	Sequence uint64 // 1 for the first frame, incremented per frame
	Time     time.Time
	Frame    Frame
	Peak     Peak
}

// Sink receives every result produced by TickTo.
type Sink interface {
	Present(Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result) error

func (f SinkFunc) Present(r Result) error { return f(r) }

// BlockObserver sees every block drained from the queue, on the analysis
// side and in arrival order. The block is only valid during the call.
type BlockObserver interface {
	ObserveBlock(Block)
}

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Ticks    uint64 // Tick calls
	Frames   uint64 // ticks that produced a frame
	Pushed   uint64 // blocks accepted by the queue
	Dropped  uint64 // blocks rejected by the queue
	Queued   int    // blocks waiting in the queue
	Buffered int    // samples held by the accumulator
}

// Pipeline wires the queue, accumulator, processor and peak extraction
// together. Push may be called from the producer; every other method
// belongs to the single analysis goroutine.
type Pipeline struct {
	params    config.Params
	queue     *BlockQueue
	pool      *BlockPool
	acc       *Accumulator
	proc      *Processor
	observers []BlockObserver

	drained  []Block   // reused drain buffer
	window   []float64 // reused analysis window
	sequence uint64

	ticks    atomic.Uint64
	frames   atomic.Uint64
	buffered atomic.Int64
}

// NewPipeline builds a pipeline from derived parameters.
func NewPipeline(params config.Params) (*Pipeline, error) {
	if params.BlockSize < 1 {
		return nil, fmt.Errorf("block size must be positive, got %d", params.BlockSize)
	}
	windowFunc, err := ParseWindowFunc(params.Window)
	if err != nil {
		return nil, err
	}
	proc, err := NewProcessor(params.FFTSize, params.SampleRate, windowFunc, params.Smoothing)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		params:  params,
		queue:   NewBlockQueue(params.QueueCapacity),
		pool:    NewBlockPool(params.BlockSize, params.QueueCapacity+2),
		acc:     NewAccumulator(params.TrimCap),
		proc:    proc,
		drained: make([]Block, 0, max(params.QueueCapacity, 1)),
		window:  make([]float64, params.FFTSize),
	}, nil
}

// Push hands a block to the analysis side without blocking. It reports
// false when the block was dropped because the queue is full; a dropped
// block goes back to the pool.
func (p *Pipeline) Push(b Block) bool {
	if p.queue.TryPush(b) {
		return true
	}
	p.pool.Put(b)
	return false
}

// NewBlock returns a recycled BlockSize block for the producer to fill and
// Push. Once drained, pool blocks are reused, so observers must not keep
// them past ObserveBlock.
func (p *Pipeline) NewBlock() Block {
	return p.pool.Get()
}

// Observe registers o to receive drained blocks. It must not be called
// concurrently with Tick.
func (p *Pipeline) Observe(o BlockObserver) {
	p.observers = append(p.observers, o)
}

// Tick drains pending blocks and, once at least one block worth of samples
// has accumulated, analyses the most recent FFTSize samples. It reports
// false when nothing was produced.
func (p *Pipeline) Tick() (Result, bool) {
	p.ticks.Add(1)

	p.drained = p.queue.TryPopAll(p.drained[:0])
	for _, b := range p.drained {
		p.acc.Append(b)
		for _, o := range p.observers {
			o.ObserveBlock(b)
		}
		p.pool.Put(b)
	}
	clear(p.drained)

	if p.acc.Len() < p.params.BlockSize {
		p.buffered.Store(int64(p.acc.Len()))
		return Result{}, false
	}

	p.acc.LatestInto(p.window)
	frame := p.proc.Process(p.window)
	peak, err := FindPeak(frame)
	if err != nil {
		return Result{}, false
	}
	p.acc.Trim()
	p.buffered.Store(int64(p.acc.Len()))

	p.sequence++
	p.frames.Add(1)
	return Result{
		Sequence: p.sequence,
		Time:     time.Now(),
		Frame:    frame,
		Peak:     peak,
	}, true
}

// TickTo runs Tick and presents any result to sink. The sink error is
// returned as is.
func (p *Pipeline) TickTo(sink Sink) (Result, bool, error) {
	res, ok := p.Tick()
	if !ok || sink == nil {
		return res, ok, nil
	}
	return res, true, sink.Present(res)
}

// Stats returns current counters. It is safe to call from any goroutine.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Ticks:    p.ticks.Load(),
		Frames:   p.frames.Load(),
		Pushed:   p.queue.Pushed(),
		Dropped:  p.queue.Dropped(),
		Queued:   p.queue.Len(),
		Buffered: int(p.buffered.Load()),
	}
}

// Params returns the derived sizes the pipeline was built with.
func (p *Pipeline) Params() config.Params { return p.params }

// Processor returns the spectral processor. It belongs to the analysis
// goroutine.
func (p *Pipeline) Processor() *Processor { return p.proc }

// Queue returns the block queue between producer and analysis.
func (p *Pipeline) Queue() *BlockQueue { return p.queue }

// Pool returns the block pool behind NewBlock.
func (p *Pipeline) Pool() *BlockPool { return p.pool }

// Accumulator returns the sample history. It belongs to the analysis
// goroutine.
func (p *Pipeline) Accumulator() *Accumulator { return p.acc }
