package graph

import "sort"

// WeightedEdge is a (src, dst, weight) triple, the convenient literal form
// used to build small graphs in tests and benchmarks without going through
// the binary CSR loader.
type WeightedEdge struct {
	Src, Dst NodeID
	Weight   uint32
}

// FromEdges builds a CSR Graph with numNodes nodes from an edge list. If
// symmetric is true, each edge is also inserted in reverse, matching the
// -symmetricGraph CLI flag's semantics.
func FromEdges(numNodes int, edges []WeightedEdge, symmetric bool) *Graph {
	all := edges
	if symmetric {
		all = make([]WeightedEdge, 0, len(edges)*2)
		all = append(all, edges...)
		for _, e := range edges {
			all = append(all, WeightedEdge{Src: e.Dst, Dst: e.Src, Weight: e.Weight})
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Src < all[j].Src })

	rowStart := make([]uint64, numNodes+1)
	for _, e := range all {
		rowStart[e.Src+1]++
	}
	for i := 1; i <= numNodes; i++ {
		rowStart[i] += rowStart[i-1]
	}

	dst := make([]NodeID, len(all))
	weight := make([]uint32, len(all))
	cursor := append([]uint64(nil), rowStart...)
	for _, e := range all {
		idx := cursor[e.Src]
		dst[idx] = e.Dst
		weight[idx] = e.Weight
		cursor[e.Src]++
	}

	return New(rowStart, dst, weight)
}

// Transpose builds the reverse adjacency of a FromEdges-built graph and
// attaches it via SetTranspose, for tests that need in-degree without a
// file round-trip.
func (g *Graph) Transpose(edges []WeightedEdge, numNodes int) {
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Dst < edges[j].Dst })
	rowStart := make([]uint64, numNodes+1)
	for _, e := range edges {
		rowStart[e.Dst+1]++
	}
	for i := 1; i <= numNodes; i++ {
		rowStart[i] += rowStart[i-1]
	}
	src := make([]NodeID, len(edges))
	cursor := append([]uint64(nil), rowStart...)
	for _, e := range edges {
		idx := cursor[e.Dst]
		src[idx] = e.Src
		cursor[e.Dst]++
	}
	g.SetTranspose(rowStart, src)
}
