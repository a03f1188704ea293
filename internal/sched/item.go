// Package sched implements the concurrent priority scheduler family: OBIM,
// adaptive OBIM, a stealing multi-queue, and a relaxed global priority
// queue (k-LSM/skiplist/spraylist/swarm variants). All of them satisfy the
// same Scheduler capability interface so the operator driver (internal/
// driver) is written once against that interface, with the concrete
// scheduler chosen once at process start from the -wl flag.
package sched

import "github.com/khryptorgraphics/galois-scheduler/internal/graph"

// Item is a scheduled (node, priority-key) pair. Ordering is ascending Key,
// ties broken ascending Node.
type Item struct {
	Node graph.NodeID
	Key  uint64
}

// Less reports whether a sorts before b under the scheduler's total order.
func Less(a, b Item) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.Node < b.Node
}

// Scheduler is the capability every worklist implementation provides. The
// operator driver calls Push/Pop/Empty from worker goroutines and
// OnThreadStart/OnThreadEnd once per goroutine lifetime, mirroring the
// per-thread setup Galois worklists perform (thread-local chunk
// allocators, local heaps, steal buffers).
type Scheduler interface {
	// Push enqueues item on behalf of the given thread id.
	Push(item Item, threadID int)
	// Pop returns the next item for the given thread id, or ok=false if
	// none was found from that thread's vantage point. ok=false does not
	// by itself mean the scheduler is globally empty; callers use Empty
	// for that as part of a two-phase quiescence handshake.
	Pop(threadID int) (item Item, ok bool)
	// Empty reports whether the scheduler holds no items from any
	// thread's vantage point. The driver still runs its own two-phase
	// barrier around this; Empty is the single-observation primitive that
	// barrier is built from.
	Empty() bool
	// OnThreadStart/OnThreadEnd let a scheduler allocate and release
	// per-thread state (free lists, local heaps, steal buffers).
	OnThreadStart(threadID int)
	OnThreadEnd(threadID int)
}
