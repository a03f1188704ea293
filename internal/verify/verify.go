// Package verify implements the post-run consistency check: after a
// shortest-path run reaches quiescence, every edge (u,v,w) must satisfy
// dist(v) <= dist(u)+w, and every node reachable from source must not be
// left at Infinity. Skipped entirely when -noverify is set.
package verify

import (
	"fmt"

	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
)

// ShortestPaths checks shortest-path consistency for SSSP/A* over g, given
// the source node used to seed the run. It returns a *galoiserr.Error
// (KindInvariant) describing the first violation found, or nil if none.
func ShortestPaths(g *graph.Graph, source graph.NodeID) error {
	if int(source) >= g.NumNodes() {
		return galoiserr.New(galoiserr.KindInput, "verify.ShortestPaths", fmt.Errorf("source node %d out of range", source))
	}
	if g.Node(source).LoadDist().Dist() != 0 {
		return galoiserr.New(galoiserr.KindInvariant, "verify.ShortestPaths",
			fmt.Errorf("source node %d has nonzero distance %d", source, g.Node(source).LoadDist().Dist()))
	}

	for u := 0; u < g.NumNodes(); u++ {
		un := graph.NodeID(u)
		ud := g.Node(un).LoadDist().Dist()
		if ud == graph.Infinity {
			continue // unreached from source: nothing to check on its out-edges
		}
		for _, e := range g.OutEdges(un) {
			vd := g.Node(e.Dst).LoadDist().Dist()
			if vd == graph.Infinity {
				return galoiserr.New(galoiserr.KindInvariant, "verify.ShortestPaths",
					fmt.Errorf("node %d reachable via %d but left at infinity", e.Dst, un))
			}
			bound := ud + e.Weight
			if bound < ud {
				continue // overflow past a real weight: no valid graph hits this
			}
			if vd > bound {
				return galoiserr.New(galoiserr.KindInvariant, "verify.ShortestPaths",
					fmt.Errorf("edge (%d,%d,w=%d): dist(v)=%d > dist(u)=%d", un, e.Dst, e.Weight, vd, ud))
			}
		}
	}
	return nil
}

// PageRankResiduals checks that every node's residual settled below tol,
// restating the convergence condition as a post-run invariant.
func PageRankResiduals(g *graph.Graph, tol float64) error {
	for n := 0; n < g.NumNodes(); n++ {
		id := graph.NodeID(n)
		if float64(g.Node(id).Residual()) > tol {
			return galoiserr.New(galoiserr.KindInvariant, "verify.PageRankResiduals",
				fmt.Errorf("node %d residual %v exceeds tolerance %v", id, g.Node(id).Residual(), tol))
		}
	}
	return nil
}
