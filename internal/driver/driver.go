// Package driver implements the operator driver: the pull-invoke-push loop
// every worker thread runs against a sched.Scheduler, with quiescence
// detection, cooperative break, and per-thread sharded statistics.
package driver

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

// Operator is a user algorithm body (SSSP/A*/PageRank relaxation). It reads
// and CASes node state and may push new items through ctx; all three
// operators in this repository are abort-free, so the driver performs no
// conflict-detection bookkeeping around the call.
type Operator func(item sched.Item, ctx *Context)

// Driver runs Operator across a fixed pool of worker goroutines pulling
// from a single Scheduler until quiescence.
type Driver struct {
	sched      sched.Scheduler
	numThreads int

	epoch         atomic.Uint64
	sawEmptyEpoch []atomic.Uint64 // per-thread; 0 means "no observation yet"
	broke         atomic.Bool

	stats []Stats
}

// New builds a driver over an already-constructed scheduler (see
// sched.New) for the given number of worker threads.
func New(s sched.Scheduler, numThreads int) *Driver {
	if numThreads < 1 {
		numThreads = 1
	}
	return &Driver{
		sched:         s,
		numThreads:    numThreads,
		sawEmptyEpoch: make([]atomic.Uint64, numThreads),
		stats:         make([]Stats, numThreads),
	}
}

// ForEachLocal seeds the scheduler with the initial items (distributed
// round-robin across threads) and runs op to quiescence, mirroring
// Galois's for_each_local. It returns the aggregated statistics and any
// error recovered from a scheduler-internal panic.
func (d *Driver) ForEachLocal(seeds []sched.Item, op Operator) (Totals, error) {
	for i, it := range seeds {
		d.sched.Push(it, i%d.numThreads)
	}

	for t := 0; t < d.numThreads; t++ {
		d.sched.OnThreadStart(t)
	}

	g, _ := errgroup.WithContext(context.Background())
	for t := 0; t < d.numThreads; t++ {
		threadID := t
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if gerr, ok := r.(*galoiserr.Error); ok {
						err = gerr
						return
					}
					err = galoiserr.New(galoiserr.KindInternal, "driver.worker", errAsError(r))
				}
			}()
			d.runWorker(threadID, op)
			return nil
		})
	}
	runErr := g.Wait()

	for t := 0; t < d.numThreads; t++ {
		d.sched.OnThreadEnd(t)
	}

	return aggregate(d.stats), runErr
}

func (d *Driver) runWorker(threadID int, op Operator) {
	for {
		if d.broke.Load() {
			return
		}
		item, ok := d.sched.Pop(threadID)
		if !ok {
			d.stats[threadID].Empty++
			if d.observeEmpty(threadID) {
				return
			}
			continue
		}
		d.resetEmpty(threadID)

		ctx := &Context{d: d, threadID: threadID, start: time.Now()}
		d.stats[threadID].Dequeued++
		op(item, ctx)
		if ctx.stale {
			d.stats[threadID].Stale++
		}
		if ctx.broke {
			d.broke.Store(true)
		}
	}
}

// observeEmpty implements the two-phase quiescence handshake: a thread
// records the epoch at which it saw nothing; only once every thread's
// latest observation agrees with the current (unchanged) epoch, and the
// scheduler itself reports Empty(), is the computation considered
// quiesced. A push between the two checks bumps the epoch and invalidates
// the observation, so a worker simply retries.
func (d *Driver) observeEmpty(threadID int) bool {
	e := d.epoch.Load()
	d.sawEmptyEpoch[threadID].Store(e + 1)

	for t := 0; t < d.numThreads; t++ {
		if d.sawEmptyEpoch[t].Load() != e+1 {
			return false
		}
	}
	return d.sched.Empty() && d.epoch.Load() == e
}

func (d *Driver) resetEmpty(threadID int) {
	d.sawEmptyEpoch[threadID].Store(0)
}

func errAsError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return galoiserr.New(galoiserr.KindInternal, "driver.worker", nil)
}
