package sched

const (
	minSteal = 1
	maxSteal = 32
)

// AdaptiveMultiQueue is a MultiQueue whose steal batch size S a thread may
// retune based on its own recent hit rate, the stealing-multi-queue analogue
// of AdaptiveOBIM's bucket-width retuning: K (heap count, and so thread-to-heap
// mapping) stays fixed, but S grows when pops keep coming back empty and
// shrinks when stealing looks unnecessary.
type AdaptiveMultiQueue struct {
	*MultiQueue
	counters []threadAdaptCounters // index by heap, single-writer per owning thread
}

// NewAdaptiveMultiQueue constructs the adap-smq scheduler: K local heaps,
// starting steal batch size initialS, retuned at runtime.
func NewAdaptiveMultiQueue(k, initialS int) *AdaptiveMultiQueue {
	m := &AdaptiveMultiQueue{
		MultiQueue: NewMultiQueue(k, initialS),
		counters:   make([]threadAdaptCounters, k),
	}
	m.sDynamic.Store(uint32(initialS))
	return m
}

func (a *AdaptiveMultiQueue) Pop(threadID int) (Item, bool) {
	item, ok := a.MultiQueue.Pop(threadID)
	idx := a.heapIndex(threadID)
	c := &a.counters[idx]
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

func (a *AdaptiveMultiQueue) maybeAdapt(c *threadAdaptCounters) {
	cur := a.sDynamic.Load()

	// empty/total > adaptUpper: local heaps are running dry too often;
	// steal more per sample so a hit carries more useful work.
	if uint64(c.empty)*adaptUpperDen > uint64(c.processed)*adaptUpperNum {
		newS := cur
		if newS < maxSteal {
			newS++
		}
		a.sDynamic.Store(newS)
		return
	}
	// empty/total < adaptLower: stealing rarely needed; shrink the batch
	// to cut the cross-heap contention a large steal causes.
	if uint64(c.empty)*adaptLowerDen < uint64(c.processed)*adaptLowerNum {
		newS := cur
		if newS > minSteal {
			newS--
		}
		a.sDynamic.Store(newS)
	}
}
