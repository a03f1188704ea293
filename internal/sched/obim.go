package sched

import (
	"sort"
	"sync"
	"sync/atomic"
)

// obim is the ordered-by-integer-metric scheduler: a map from integer
// bucket to per-bucket chunkBag, with a per-thread cached cursor and a
// shared atomic global-minimum-bucket hint.
type obim struct {
	delta atomic.Uint32 // bucket shift; fixed here, mutated by AdaptiveOBIM

	mu      sync.RWMutex
	buckets map[int64]*chunkBag
	sorted  []int64 // buckets' keys, kept sorted; rebuilt under mu

	cursor    []int64 // per-thread cached bucket, index by threadID
	globalMin atomic.Int64
}

// newOBIM builds an OBIM scheduler for numThreads worker threads with the
// given initial bucket shift (default 10 per the -delta flag).
func newOBIM(numThreads int, delta uint32) *obim {
	o := &obim{
		buckets: make(map[int64]*chunkBag),
		cursor:  make([]int64, numThreads),
	}
	o.delta.Store(delta)
	o.globalMin.Store(1<<62 - 1)
	return o
}

func (o *obim) bucketOf(key uint64) int64 {
	return int64(key >> o.delta.Load())
}

func (o *obim) getOrCreateBag(bucket int64, numThreads int) *chunkBag {
	o.mu.RLock()
	b, ok := o.buckets[bucket]
	o.mu.RUnlock()
	if ok {
		return b
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if b, ok = o.buckets[bucket]; ok {
		return b
	}
	b = newChunkBag(numThreads)
	o.buckets[bucket] = b
	idx := sort.Search(len(o.sorted), func(i int) bool { return o.sorted[i] >= bucket })
	o.sorted = append(o.sorted, 0)
	copy(o.sorted[idx+1:], o.sorted[idx:])
	o.sorted[idx] = bucket
	return b
}

func (o *obim) getBag(bucket int64) *chunkBag {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.buckets[bucket]
}

func (o *obim) sortedKeys() []int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]int64, len(o.sorted))
	copy(out, o.sorted)
	return out
}

// push computes the target bucket and appends to the pusher's local
// chunk, lowering the global-min hint if this bucket undercuts it.
func (o *obim) push(item Item, threadID, numThreads int) {
	bucket := o.bucketOf(item.Key)
	bag := o.getOrCreateBag(bucket, numThreads)
	bag.pushLocal(threadID, item)
	for {
		cur := o.globalMin.Load()
		if bucket >= cur {
			break
		}
		if o.globalMin.CompareAndSwap(cur, bucket) {
			break
		}
	}
}

func (o *obim) tryBucket(bucket int64, threadID int) (Item, bool) {
	bag := o.getBag(bucket)
	if bag == nil {
		return Item{}, false
	}
	if it, ok := bag.popLocal(threadID); ok {
		return it, true
	}
	if chunk, ok := bag.steal(); ok {
		bag.adopt(threadID, chunk)
		if it, ok := bag.popLocal(threadID); ok {
			return it, true
		}
	}
	return Item{}, false
}

// pop tries the cached cursor bucket first (local chunk, then steal from
// siblings), then scans remaining buckets in ascending key order. Ascending
// order folds together "advance past the cursor" and "reset cursor
// downward on a remote low push" into one scan, since a Go map offers no
// stateful cursor to advance incrementally the way an ordered tree-map
// would.
func (o *obim) pop(threadID int) (Item, bool) {
	cur := o.cursor[threadID]
	if it, ok := o.tryBucket(cur, threadID); ok {
		return it, true
	}
	for _, k := range o.sortedKeys() {
		if k == cur {
			continue
		}
		if it, ok := o.tryBucket(k, threadID); ok {
			o.cursor[threadID] = k
			return it, true
		}
	}
	return Item{}, false
}

func (o *obim) empty() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, b := range o.buckets {
		if !b.empty() {
			return false
		}
	}
	return true
}

// OBIM wraps obim to satisfy the Scheduler interface with a fixed,
// process-lifetime thread count.
type OBIM struct {
	impl       *obim
	numThreads int
}

// NewOBIM constructs an ordered-by-integer-metric scheduler.
func NewOBIM(numThreads int, delta uint32) *OBIM {
	return &OBIM{impl: newOBIM(numThreads, delta), numThreads: numThreads}
}

func (s *OBIM) Push(item Item, threadID int)     { s.impl.push(item, threadID, s.numThreads) }
func (s *OBIM) Pop(threadID int) (Item, bool)    { return s.impl.pop(threadID) }
func (s *OBIM) Empty() bool                      { return s.impl.empty() }
func (s *OBIM) OnThreadStart(threadID int)       {}
func (s *OBIM) OnThreadEnd(threadID int)         {}

// Delta returns the current bucket shift, exported for diagnostics and for
// ADAP-OBIM's adaptation logic.
func (s *OBIM) Delta() uint32 { return s.impl.delta.Load() }
