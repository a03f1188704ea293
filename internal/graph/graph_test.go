package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineGraph() *Graph {
	return FromEdges(4, []WeightedEdge{
		{Src: 0, Dst: 1, Weight: 1},
		{Src: 1, Dst: 2, Weight: 2},
		{Src: 2, Dst: 3, Weight: 4},
	}, false)
}

func TestFromEdgesAdjacency(t *testing.T) {
	g := lineGraph()
	require.Equal(t, 4, g.NumNodes())

	edges := g.OutEdges(0)
	require.Len(t, edges, 1)
	assert.Equal(t, NodeID(1), edges[0].Dst)
	assert.Equal(t, uint32(1), edges[0].Weight)

	assert.Equal(t, 0, g.OutDegree(3))
}

func TestNewResetsDistToInfinity(t *testing.T) {
	g := lineGraph()
	for n := 0; n < g.NumNodes(); n++ {
		assert.Equal(t, Infinity, g.Node(NodeID(n)).LoadDist().Dist())
	}
}

func TestCasDistOnlyMovesDownward(t *testing.T) {
	g := lineGraph()
	n := g.Node(0)

	old := n.LoadDist()
	require.True(t, n.CasDist(old, PackDist(5, 0)))
	assert.Equal(t, uint32(5), n.LoadDist().Dist())

	// a stale expected word must fail: the CAS should never silently
	// clobber a concurrent improvement.
	assert.False(t, n.CasDist(old, PackDist(3, 0)))
	assert.Equal(t, uint32(5), n.LoadDist().Dist())
}

func TestResidualSwapAndAdd(t *testing.T) {
	g := lineGraph()
	n := g.Node(0)
	n.ResetPageRank(0.15)

	old := n.AddResidual(0.5)
	assert.InDelta(t, 0, old, 1e-9)
	assert.InDelta(t, 0.5, n.Residual(), 1e-6)

	swapped := n.SwapResidual()
	assert.InDelta(t, 0.5, swapped, 1e-6)
	assert.InDelta(t, 0, n.Residual(), 1e-9)
}

func TestDegreeOutOnlyMatchesSourceConvention(t *testing.T) {
	g := lineGraph()
	// outOnly uses "1+nout", matching Galois's convention of counting the
	// node itself alongside its out-edges.
	assert.Equal(t, g.OutDegree(0)+1, g.Degree(0, true))
}

func TestTransposeInDegree(t *testing.T) {
	edges := []WeightedEdge{
		{Src: 0, Dst: 2, Weight: 1},
		{Src: 1, Dst: 2, Weight: 1},
	}
	g := FromEdges(3, edges, false)
	g.Transpose(append([]WeightedEdge(nil), edges...), 3)

	require.True(t, g.HasTranspose())
	assert.Equal(t, 2, g.InDegree(2))
	neighbors := g.InNeighbors(2)
	assert.ElementsMatch(t, []NodeID{0, 1}, neighbors)
}
