// Package ops implements the three operator bodies the driver invokes once
// per dequeued work item: SSSP, A*, and residual PageRank relaxation.
package ops

import (
	"github.com/khryptorgraphics/galois-scheduler/internal/driver"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

// SSSPKey computes the scheduling key for a node given its current
// distance: key(n) = dist(n).
func SSSPKey(dist uint32) uint64 { return uint64(dist) }

// SSSP builds the relaxation operator for single-source shortest paths over
// g. Neither this operator nor AStar need any conflict-detection bookkeeping
// around the call: both only ever move a node's distance downward via CAS.
func SSSP(g *graph.Graph) driver.Operator {
	return func(item sched.Item, ctx *driver.Context) {
		relaxSSSP(g, item, ctx, nil)
	}
}

// relaxSSSP is the SSSP relaxation body. A* does not call it: its stale
// check uses the heuristic key, so it shares only relaxEdge. pushKey, when
// non-nil, overrides the default
// SSSPKey(newDist) used to compute the key pushed for an improved neighbor;
// it receives the neighbor id and its newly-relaxed distance.
func relaxSSSP(g *graph.Graph, item sched.Item, ctx *driver.Context, pushKey func(v graph.NodeID, newDist uint32) (key uint64, skip bool)) {
	state := g.Node(item.Node)
	cur := state.LoadDist()
	if item.Key != SSSPKey(cur.Dist()) {
		ctx.MarkStale()
		return
	}

	sdist := cur.Dist()
	for _, e := range g.OutEdges(item.Node) {
		nd := sdist + e.Weight
		if nd < sdist {
			// overflow past Infinity: no edge weight in a valid graph
			// should make this reachable, but never relax into wraparound.
			continue
		}
		relaxEdge(g, e.Dst, nd, item.Node, ctx, pushKey)
	}
}

// relaxEdge is the CAS-retry loop common to SSSP and A*: keep attempting to
// lower v's distance to nd until either it succeeds (push the improvement)
// or a concurrent writer has already matched or beaten nd.
func relaxEdge(g *graph.Graph, v graph.NodeID, nd uint32, from graph.NodeID, ctx *driver.Context, pushKey func(v graph.NodeID, newDist uint32) (uint64, bool)) {
	target := g.Node(v)
	for {
		old := target.LoadDist()
		if nd >= old.Dist() {
			return
		}
		newWord := graph.PackDist(nd, old.Work()+1)
		if target.CasDist(old, newWord) {
			key := SSSPKey(nd)
			skip := false
			if pushKey != nil {
				key, skip = pushKey(v, nd)
			}
			if !skip {
				ctx.Push(v, key)
			}
			return
		}
		// lost the race: re-read and retry, or abandon if no longer
		// improving.
	}
}
