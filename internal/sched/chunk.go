package sched

import "sync"

// ChunkSize is the maximum number of items a single chunk holds before it
// is published and a fresh one started.
const ChunkSize = 64

// itemChunk is a fixed-capacity LIFO buffer of items. Popping from the
// current producer chunk in LIFO order keeps recently-pushed, cache-hot
// items on the same thread that just touched them.
type itemChunk struct {
	items [ChunkSize]Item
	n     int
}

func (c *itemChunk) push(it Item) bool {
	if c.n >= ChunkSize {
		return false
	}
	c.items[c.n] = it
	c.n++
	return true
}

func (c *itemChunk) pop() (Item, bool) {
	if c.n == 0 {
		return Item{}, false
	}
	c.n--
	return c.items[c.n], true
}

// chunkList is the globally-visible consumer endpoint of a chunked bag: a
// singly-linked stack of published (full) chunks, any thread may detach
// one. A mutex guards a single-pointer-swap operation here rather than a
// lock-free CAS, which is sufficient since chunk detach is not on the hot
// single-item path (only whole published chunks move this way).
type chunkList struct {
	mu   sync.Mutex
	head *chunkListNode
}

type chunkListNode struct {
	chunk *itemChunk
	next  *chunkListNode
}

func (l *chunkList) publish(c *itemChunk) {
	l.mu.Lock()
	l.head = &chunkListNode{chunk: c, next: l.head}
	l.mu.Unlock()
}

// steal detaches and returns one published chunk, or ok=false if none is
// available.
func (l *chunkList) steal() (*itemChunk, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.head == nil {
		return nil, false
	}
	c := l.head.chunk
	l.head = l.head.next
	return c, true
}

func (l *chunkList) empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head == nil
}

// chunkBag is the per-bucket chunked FIFO bag: one live producer chunk per
// thread (touched only by its owning thread) plus the shared published
// list any thread may steal from.
type chunkBag struct {
	producers []*itemChunk // index by threadID; nil until first push
	published chunkList
}

func newChunkBag(numThreads int) *chunkBag {
	return &chunkBag{producers: make([]*itemChunk, numThreads)}
}

// pushLocal appends to the calling thread's producer chunk, publishing and
// replacing it on overflow.
func (b *chunkBag) pushLocal(threadID int, it Item) {
	c := b.producers[threadID]
	if c == nil {
		c = &itemChunk{}
		b.producers[threadID] = c
	}
	if c.push(it) {
		return
	}
	b.published.publish(c)
	fresh := &itemChunk{}
	fresh.push(it)
	b.producers[threadID] = fresh
}

// popLocal pops LIFO from the calling thread's own producer chunk only; it
// never reaches into the published list (that is steal's job).
func (b *chunkBag) popLocal(threadID int) (Item, bool) {
	c := b.producers[threadID]
	if c == nil {
		return Item{}, false
	}
	return c.pop()
}

// adopt installs a stolen chunk as the calling thread's new producer
// chunk. Any unfinished local chunk the thread already held is published
// first so its items are not lost.
func (b *chunkBag) adopt(threadID int, c *itemChunk) {
	if old := b.producers[threadID]; old != nil && old.n > 0 {
		b.published.publish(old)
	}
	b.producers[threadID] = c
}

// steal detaches one published chunk from this bag, for any thread to
// adopt.
func (b *chunkBag) steal() (*itemChunk, bool) {
	return b.published.steal()
}

// empty is a single, non-linearizable observation: concurrent pushes can
// race with this check. The driver's quiescence barrier is what turns
// repeated calls to this into a correct termination signal, so callers
// must never treat one empty() observation as proof of quiescence.
func (b *chunkBag) empty() bool {
	for _, c := range b.producers {
		if c != nil && c.n > 0 {
			return false
		}
	}
	return b.published.empty()
}
