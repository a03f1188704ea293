package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

// chainOperator relaxes a synthetic chain 0->1->...->n-1 with unit edges,
// pushing the next node whenever the current one's key still matches its
// recorded distance (mirroring the shape of SSSP without depending on
// package ops, to keep this a driver-only test).
func chainOperator(g *graph.Graph, n int) Operator {
	return func(item sched.Item, ctx *Context) {
		state := g.Node(item.Node)
		cur := state.LoadDist()
		if item.Key != uint64(cur.Dist()) {
			ctx.MarkStale()
			return
		}
		next := item.Node + 1
		if int(next) >= n {
			return
		}
		nd := cur.Dist() + 1
		nstate := g.Node(next)
		old := nstate.LoadDist()
		if nd < old.Dist() && nstate.CasDist(old, graph.PackDist(nd, 0)) {
			ctx.Push(next, uint64(nd))
		}
	}
}

func TestForEachLocalReachesQuiescenceOnChain(t *testing.T) {
	const n = 200
	g := graph.FromEdges(n, nil, false)
	g.Node(0).CasDist(g.Node(0).LoadDist(), graph.PackDist(0, 0))

	s := sched.NewOBIM(4, 4)
	d := New(s, 4)

	totals, err := d.ForEachLocal([]sched.Item{{Node: 0, Key: 0}}, chainOperator(g, n))
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		assert.Equal(t, uint32(i), g.Node(graph.NodeID(i)).LoadDist().Dist())
	}
	// Every push must be accounted for by a dequeue, with nothing left
	// pending once the driver returns.
	assert.Equal(t, uint64(0), totals.Pending(1))
}

func TestContextBreakStopsFurtherWork(t *testing.T) {
	const n = 50
	g := graph.FromEdges(n, nil, false)
	g.Node(0).CasDist(g.Node(0).LoadDist(), graph.PackDist(0, 0))

	s := sched.NewOBIM(1, 4)
	d := New(s, 1)

	stopAt := 10
	op := func(item sched.Item, ctx *Context) {
		state := g.Node(item.Node)
		cur := state.LoadDist()
		if item.Key != uint64(cur.Dist()) {
			ctx.MarkStale()
			return
		}
		if int(item.Node) >= stopAt {
			ctx.Break()
			return
		}
		next := item.Node + 1
		nd := cur.Dist() + 1
		nstate := g.Node(next)
		old := nstate.LoadDist()
		if nd < old.Dist() && nstate.CasDist(old, graph.PackDist(nd, 0)) {
			ctx.Push(next, uint64(nd))
		}
	}

	_, err := d.ForEachLocal([]sched.Item{{Node: 0, Key: 0}}, op)
	require.NoError(t, err)

	assert.Equal(t, uint32(stopAt), g.Node(graph.NodeID(stopAt)).LoadDist().Dist())
	assert.Equal(t, graph.Infinity, g.Node(graph.NodeID(stopAt+1)).LoadDist().Dist())
}
