package graph

// Graph is an immutable compressed-sparse-row adjacency list plus a
// per-node NodeState array. Edge arrays never change after load; only
// NodeState fields are mutated, and only through the atomic accessors in
// node.go, since the graph itself is read-mostly during a run.
type Graph struct {
	rowStart []uint64 // len NumNodes+1
	dst      []NodeID
	weight   []uint32
	nodes    []NodeState

	// transpose holds in-edges (dst -> src) for algorithms that need
	// in-degree or in-neighbor iteration, such as PageRank's value
	// recomputation. Nil if no -graphTranspose file was given.
	transposeRowStart []uint64
	transposeSrc      []NodeID
}

// New builds a Graph from CSR arrays. rowStart must have length n+1.
func New(rowStart []uint64, dst []NodeID, weight []uint32) *Graph {
	n := len(rowStart) - 1
	g := &Graph{
		rowStart: rowStart,
		dst:      dst,
		weight:   weight,
		nodes:    make([]NodeState, n),
	}
	for i := range g.nodes {
		g.nodes[i].Reset()
	}
	return g
}

// SetTranspose attaches a reverse-adjacency CSR built from a
// -graphTranspose file, used by PageRank's in-degree/in-neighbor walk.
func (g *Graph) SetTranspose(rowStart []uint64, src []NodeID) {
	g.transposeRowStart = rowStart
	g.transposeSrc = src
}

// HasTranspose reports whether a transpose adjacency was attached.
func (g *Graph) HasTranspose() bool { return g.transposeRowStart != nil }

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Node returns the mutable per-node state for n.
func (g *Graph) Node(n NodeID) *NodeState { return &g.nodes[n] }

// Edge is one out-edge: destination node and weight.
type Edge struct {
	Dst    NodeID
	Weight uint32
}

// OutEdges returns the out-edges of n as a freshly allocated slice; it does
// not alias Graph-owned storage.
func (g *Graph) OutEdges(n NodeID) []Edge {
	start, end := g.rowStart[n], g.rowStart[n+1]
	edges := make([]Edge, 0, end-start)
	for i := start; i < end; i++ {
		edges = append(edges, Edge{Dst: g.dst[i], Weight: g.weight[i]})
	}
	return edges
}

// OutDegree returns the number of out-edges of n.
func (g *Graph) OutDegree(n NodeID) int {
	return int(g.rowStart[n+1] - g.rowStart[n])
}

// InNeighbors returns the source nodes of in-edges to n, from the attached
// transpose adjacency. Panics if no transpose was attached; callers that
// need in-degree biasing (PageRank -outdeg=false) must supply one.
func (g *Graph) InNeighbors(n NodeID) []NodeID {
	start, end := g.transposeRowStart[n], g.transposeRowStart[n+1]
	out := make([]NodeID, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, g.transposeSrc[i])
	}
	return out
}

// InDegree returns the number of in-edges to n from the transpose
// adjacency.
func (g *Graph) InDegree(n NodeID) int {
	return int(g.transposeRowStart[n+1] - g.transposeRowStart[n])
}

// Degree returns 1+out-degree, or in+out degree, per PageRank's outOnly
// switch. The in+out form needs an attached transpose.
func (g *Graph) Degree(n NodeID, outOnly bool) int {
	if outOnly {
		return g.OutDegree(n) + 1
	}
	return g.OutDegree(n) + g.InDegree(n)
}

// SetCoord sets the A* coordinate pair for a node, in micro-degrees.
func (g *Graph) SetCoord(n NodeID, x, y int32) {
	g.nodes[n].X = x
	g.nodes[n].Y = y
}

// Coord returns the A* coordinate pair for a node.
func (g *Graph) Coord(n NodeID) (x, y int32) {
	return g.nodes[n].X, g.nodes[n].Y
}
