package driver

// Stats is one worker thread's sharded counters, kept per-thread to avoid
// contention and aggregated only once at shutdown. The driver never
// exposes these to the operator directly; the pull loop and Context.Push
// update them on the operator's behalf.
type Stats struct {
	Dequeued uint64 // items popped and handed to the operator (stale + productive)
	Stale    uint64 // of those, how many the operator reported stale
	Pushed   uint64 // items pushed via Context.Push
	Empty    uint64 // pop attempts that found nothing
}

// Totals aggregates a slice of per-thread Stats into one summary, done once
// at shutdown.
type Totals struct {
	Dequeued uint64
	Stale    uint64
	Pushed   uint64
	Empty    uint64
}

func aggregate(shards []Stats) Totals {
	var t Totals
	for i := range shards {
		t.Dequeued += shards[i].Dequeued
		t.Stale += shards[i].Stale
		t.Pushed += shards[i].Pushed
		t.Empty += shards[i].Empty
	}
	return t
}

// Productive is the count of dequeues that actually improved a node, i.e.
// excluding stale discards.
func (t Totals) Productive() uint64 { return t.Dequeued - t.Stale }

// Pending reports items pushed (plus seeds) not yet accounted for by a
// dequeue: seeds+pushed = dequeued+pending (after the run, pending must be
// 0 — a no-loss check on the scheduler). seeds is the initial item count
// supplied to ForEachLocal, which is not captured in per-thread Pushed.
func (t Totals) Pending(seeds uint64) uint64 {
	supplied := seeds + t.Pushed
	if t.Dequeued > supplied {
		return 0
	}
	return supplied - t.Dequeued
}
