package ops

import (
	"math"
	"sync/atomic"

	"github.com/khryptorgraphics/galois-scheduler/internal/driver"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

// PRDamping is the PageRank damping factor alpha.
const PRDamping = 0.85

// PageRankKey computes key(n) = -amp*residual/tol/deg, biased so that large
// residuals on low-degree nodes sort first. Scheduling only needs a total
// order over this real-valued priority, so this uses an order-preserving
// float64->uint64 transform rather than truncating to an integer: bucket
// assignment (key>>delta) only needs relative order, and this keeps the
// full dynamic range of very large or very small residual ratios.
func PageRankKey(residual, tol, amp float64, deg int) uint64 {
	if deg <= 0 {
		deg = 1
	}
	f := -amp * residual / tol / float64(deg)
	return floatOrderKey(f)
}

// floatOrderKey maps a float64 to a uint64 that sorts identically: flip the
// sign bit for non-negatives, flip every bit for negatives.
func floatOrderKey(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// ConvergenceState tracks PageRank's iteration cap: best-effort results if
// the cap is hit before every residual falls below tolerance.
type ConvergenceState struct {
	processed     atomic.Uint64
	maxIterations uint64
	capped        atomic.Bool
}

// NewConvergenceState builds a cap tracker; maxIterations<=0 means
// unbounded (the scheduler only stops at true quiescence).
func NewConvergenceState(maxIterations int) *ConvergenceState {
	m := uint64(maxIterations)
	if maxIterations <= 0 {
		m = math.MaxUint64
	}
	return &ConvergenceState{maxIterations: m}
}

// Capped reports whether the operator stopped early because the iteration
// cap was reached before convergence.
func (c *ConvergenceState) Capped() bool { return c.capped.Load() }

// PageRank builds the residual-PageRank relaxation operator over g. tol is
// the residual convergence threshold, amp the key-amplification scalar,
// outOnly selects out-degree-only vs in+out degree for the key's deg(n)
// term. conv may be nil to run uncapped.
func PageRank(g *graph.Graph, tol, amp float64, outOnly, symmetric bool, conv *ConvergenceState) driver.Operator {
	return func(item sched.Item, ctx *driver.Context) {
		n := item.Node
		state := g.Node(n)
		residual := float64(state.Residual())
		deg := g.Degree(n, outOnly)

		if residual < tol || item.Key != PageRankKey(residual, tol, amp, deg) {
			ctx.MarkStale()
			return
		}
		if conv != nil && conv.processed.Add(1) > conv.maxIterations {
			conv.capped.Store(true)
			ctx.Break()
			return
		}

		oldResidual := state.SwapResidual()
		oldValue := state.Value()
		newValue := recomputeValue(g, n, oldValue, oldResidual, symmetric)
		state.SetValue(newValue)

		outDeg := g.OutDegree(n)
		if outDeg == 0 {
			return
		}
		absDelta := float32(math.Abs(float64(newValue-oldValue))) * float32(PRDamping)
		share := absDelta / float32(outDeg)
		if share == 0 {
			return
		}

		for _, e := range g.OutEdges(n) {
			pushResidualDelta(g, e.Dst, share, tol, amp, outOnly, ctx)
		}
	}
}

// recomputeValue computes a node's new value by pulling from in-neighbors'
// current values whenever in-neighbors are available: either from an
// attached -graphTranspose adjacency, or — for a -symmetricGraph, where
// in-neighbors and out-neighbors coincide — directly from the forward
// adjacency. Absent either, it falls back to accumulating the propagated
// residual onto the prior value, the push-only variant the algorithm
// degrades to.
func recomputeValue(g *graph.Graph, n graph.NodeID, oldValue, oldResidual float32, symmetric bool) float32 {
	var inNeighbors []graph.NodeID
	switch {
	case g.HasTranspose():
		inNeighbors = g.InNeighbors(n)
	case symmetric:
		for _, e := range g.OutEdges(n) {
			inNeighbors = append(inNeighbors, e.Dst)
		}
	default:
		return oldValue + oldResidual
	}

	var sum float32
	for _, u := range inNeighbors {
		od := g.OutDegree(u)
		if od == 0 {
			od = 1
		}
		sum += g.Node(u).Value() / float32(od)
	}
	return float32(1-PRDamping) + float32(PRDamping)*sum
}

// pushResidualDelta atomically adds share to v's residual and pushes v iff
// the new residual crosses tolerance or its key changed. The comparison is
// on the full key, not on the scheduler bucket the key falls into.
func pushResidualDelta(g *graph.Graph, v graph.NodeID, share float32, tol, amp float64, outOnly bool, ctx *driver.Context) {
	vState := g.Node(v)
	prevResidual := vState.AddResidual(share)
	newResidual := prevResidual + share
	vDeg := g.Degree(v, outOnly)

	prevKey := PageRankKey(float64(prevResidual), tol, amp, vDeg)
	newKey := PageRankKey(float64(newResidual), tol, amp, vDeg)
	crossedTol := float64(prevResidual) < tol && float64(newResidual) >= tol
	if crossedTol || newKey != prevKey {
		ctx.Push(v, newKey)
	}
}
