package sched

import "sync/atomic"

// adaptWindow is the number of dequeues sampled between adaptation
// decisions.
const adaptWindow = 4096

const (
	minDelta = 1
	maxDelta = 20

	// adaptUpper/adaptLower are the empty/total dequeue ratio thresholds
	// that trigger tightening or loosening the bucket width.
	adaptUpperNum, adaptUpperDen = 1, 2 // > 1/2 empty: delta-1 (halves bucket width)
	adaptLowerNum, adaptLowerDen = 1, 10 // < 1/10 empty: delta+1 (doubles bucket width)
)

// threadAdaptCounters is the per-thread (processed, empty) pair sampled
// every adaptWindow dequeues.
type threadAdaptCounters struct {
	processed uint32
	empty     uint32
}

// AdaptiveOBIM is an OBIM whose bucket shift a thread may retune based on
// its own recent hit rate. A change takes effect only on the adapting
// thread's next Push bucket computation; other threads observe the new
// delta lazily via the shared atomic the next time they push. Re-bucketing
// never moves items already queued.
type AdaptiveOBIM struct {
	*OBIM
	counters []threadAdaptCounters // index by threadID; single-writer each
}

// NewAdaptiveOBIM constructs an adaptive-delta OBIM scheduler.
func NewAdaptiveOBIM(numThreads int, initialDelta uint32) *AdaptiveOBIM {
	return &AdaptiveOBIM{
		OBIM:     NewOBIM(numThreads, initialDelta),
		counters: make([]threadAdaptCounters, numThreads),
	}
}

func (a *AdaptiveOBIM) Pop(threadID int) (Item, bool) {
	item, ok := a.OBIM.Pop(threadID)
	c := &a.counters[threadID]
	c.processed++
	if !ok {
		c.empty++
	}
	if c.processed >= adaptWindow {
		a.maybeAdapt(c)
		c.processed, c.empty = 0, 0
	}
	return item, ok
}

func (a *AdaptiveOBIM) maybeAdapt(c *threadAdaptCounters) {
	cur := a.impl.delta.Load()

	// empty/total > adaptUpper: work is too coarse-grained, many dequeues
	// come back empty because buckets span too much unfinished work.
	// Decrement the shift, halving the bucket width, for tighter ordering.
	if uint64(c.empty)*adaptUpperDen > uint64(c.processed)*adaptUpperNum {
		newDelta := cur
		if newDelta > minDelta {
			newDelta--
		}
		atomicStoreDelta(&a.impl.delta, newDelta)
		return
	}
	// empty/total < adaptLower: contention from overly fine buckets;
	// increment the shift, doubling the bucket width, for less queue traffic.
	if uint64(c.empty)*adaptLowerDen < uint64(c.processed)*adaptLowerNum {
		newDelta := cur
		if newDelta < maxDelta {
			newDelta++
		}
		atomicStoreDelta(&a.impl.delta, newDelta)
	}
}

func atomicStoreDelta(d *atomic.Uint32, v uint32) {
	if v < minDelta {
		v = minDelta
	}
	if v > maxDelta {
		v = maxDelta
	}
	d.Store(v)
}
