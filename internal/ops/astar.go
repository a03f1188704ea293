package ops

import (
	"math"

	"github.com/khryptorgraphics/galois-scheduler/internal/driver"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

const earthRadiusMeters = 6371000.0

func microDegreesToRadians(microDeg int32) float64 {
	return float64(microDeg) / 1e6 * math.Pi / 180
}

// Heuristic computes the Equirectangular great-circle estimate from n to
// dest, scaled by scalar. scalar=1.0 keeps the heuristic admissible and the
// search provably optimal; scalar<1.0 trades that guarantee for fewer
// expansions.
func Heuristic(g *graph.Graph, n, dest graph.NodeID, scalar float64) uint32 {
	x1, y1 := g.Coord(n)
	x2, y2 := g.Coord(dest)
	lat1, lon1 := microDegreesToRadians(y1), microDegreesToRadians(x1)
	lat2, lon2 := microDegreesToRadians(y2), microDegreesToRadians(x2)
	midLat := (lat1 + lat2) / 2
	dx := (lon2 - lon1) * math.Cos(midLat)
	dy := lat2 - lat1
	dist := math.Sqrt(dx*dx+dy*dy) * earthRadiusMeters * scalar
	if dist < 0 {
		dist = 0
	}
	return uint32(dist)
}

// AStarKey computes key(n) = dist(n) + h(n).
func AStarKey(dist, heuristic uint32) uint64 { return uint64(dist) + uint64(heuristic) }

// AStar builds the A* relaxation operator toward dest. scalar is the
// heuristic's admissibility trade-off knob.
func AStar(g *graph.Graph, dest graph.NodeID, scalar float64) driver.Operator {
	return func(item sched.Item, ctx *driver.Context) {
		state := g.Node(item.Node)
		cur := state.LoadDist()
		h := Heuristic(g, item.Node, dest, scalar)
		if item.Key != AStarKey(cur.Dist(), h) {
			ctx.MarkStale()
			return
		}

		sdist := cur.Dist()
		bestToGoal := g.Node(dest).LoadDist().Dist()
		for _, e := range g.OutEdges(item.Node) {
			nd := sdist + e.Weight
			if nd < sdist {
				continue
			}
			relaxEdge(g, e.Dst, nd, item.Node, ctx, func(v graph.NodeID, newDist uint32) (uint64, bool) {
				// pruning rule: a push past the best-known distance to the
				// goal can never improve the reported shortest path.
				if newDist > bestToGoal {
					return 0, true
				}
				return AStarKey(newDist, Heuristic(g, v, dest, scalar)), false
			})
		}
	}
}
