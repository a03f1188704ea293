package driver

import (
	"time"

	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

// Context is the handle an operator body receives on every invocation: it
// owns nothing itself, borrowing the driver and thread id for the
// duration of one call.
type Context struct {
	d        *Driver
	threadID int
	broke    bool
	stale    bool
	start    time.Time
}

// ThreadID returns the calling worker's thread id, used by operators that
// need it for per-thread scratch state.
func (c *Context) ThreadID() int { return c.threadID }

// Push enqueues a new work item on behalf of the current thread. Pushing
// bumps the driver's epoch, invalidating any in-flight quiescence
// observation.
func (c *Context) Push(n graph.NodeID, key uint64) {
	c.d.stats[c.threadID].Pushed++
	c.d.epoch.Add(1)
	c.d.sched.Push(sched.Item{Node: n, Key: key}, c.threadID)
}

// Break signals the driver that this thread should stop pulling new work;
// other threads exit too once their current operator call returns. Items
// still queued are not drained and stay in the scheduler. Cooperative
// only — checked at operator call boundaries, never preemptive.
func (c *Context) Break() { c.broke = true }

// MarkStale records that the dequeued item was discarded as stale: the
// operator, not the driver, is responsible for this classification.
func (c *Context) MarkStale() { c.stale = true }

// Elapsed returns time since this invocation began.
func (c *Context) Elapsed() time.Duration { return time.Since(c.start) }
