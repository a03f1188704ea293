package ops

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/khryptorgraphics/galois-scheduler/internal/driver"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

// buildRandomGraph decodes a flat slice of raw uint32s into a small
// weighted graph: each value yields one candidate edge, with src/dst taken
// mod n (self-loops dropped) and weight taken mod 50, kept >= 1 so every
// edge has a real cost.
func buildRandomGraph(n int, raw []uint32) []graph.WeightedEdge {
	edges := make([]graph.WeightedEdge, 0, len(raw))
	for _, v := range raw {
		src := graph.NodeID(v % uint32(n))
		dst := graph.NodeID((v / uint32(n)) % uint32(n))
		if src == dst {
			continue
		}
		edges = append(edges, graph.WeightedEdge{Src: src, Dst: dst, Weight: v%50 + 1})
	}
	return edges
}

func ssspDistances(n int, edges []graph.WeightedEdge, s sched.Scheduler, numThreads int) ([]uint32, driver.Totals, error) {
	g := graph.FromEdges(n, edges, false)
	d := driver.New(s, numThreads)
	totals, err := d.ForEachLocal(seedSSSP(g, 0), SSSP(g))
	if err != nil {
		return nil, driver.Totals{}, err
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = g.Node(graph.NodeID(i)).LoadDist().Dist()
	}
	return out, totals, nil
}

func genNodeCount() gopter.Gen { return gen.IntRange(3, 7) }
func genRawEdges() gopter.Gen  { return gen.SliceOfN(15, gen.UInt32Range(0, 1<<20)) }
func genDelta() gopter.Gen     { return gen.UInt32Range(1, 16) }

// testSchedulerInterchangeInvariant checks that the same randomly generated
// graph settles to identical final distances under two different scheduler
// families: the scheduler is an implementation detail of how work gets
// ordered, not of what the fixed point is.
func testSchedulerInterchangeInvariant(t *testing.T, n int, raw []uint32) bool {
	edges := buildRandomGraph(n, raw)
	a, _, err := ssspDistances(n, edges, sched.NewOBIM(2, 4), 2)
	if err != nil {
		t.Logf("obim run failed: %v", err)
		return false
	}
	b, _, err := ssspDistances(n, edges, sched.NewHeapMultiQueue(4, 1), 2)
	if err != nil {
		t.Logf("hmq run failed: %v", err)
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			t.Logf("node %d: obim got %d, hmq2 got %d", i, a[i], b[i])
			return false
		}
	}
	return true
}

// testDeltaInsensitivityInvariant checks that OBIM's bucket width never
// changes the final distances it settles on, only the order work is popped
// in.
func testDeltaInsensitivityInvariant(t *testing.T, n int, raw []uint32, deltaA, deltaB uint32) bool {
	edges := buildRandomGraph(n, raw)
	a, _, err := ssspDistances(n, edges, sched.NewOBIM(2, deltaA), 2)
	if err != nil {
		t.Logf("delta=%d run failed: %v", deltaA, err)
		return false
	}
	b, _, err := ssspDistances(n, edges, sched.NewOBIM(2, deltaB), 2)
	if err != nil {
		t.Logf("delta=%d run failed: %v", deltaB, err)
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			t.Logf("node %d: delta=%d got %d, delta=%d got %d", i, deltaA, a[i], deltaB, b[i])
			return false
		}
	}
	return true
}

// testNoLossInvariant checks that every dequeue is accounted for as either
// productive or stale, and nothing is left pending once the driver returns.
func testNoLossInvariant(t *testing.T, n int, raw []uint32) bool {
	edges := buildRandomGraph(n, raw)
	_, totals, err := ssspDistances(n, edges, sched.NewOBIM(3, 4), 3)
	if err != nil {
		t.Logf("run failed: %v", err)
		return false
	}
	if totals.Dequeued != totals.Productive()+totals.Stale {
		t.Logf("dequeued=%d productive=%d stale=%d", totals.Dequeued, totals.Productive(), totals.Stale)
		return false
	}
	if totals.Pending(1) != 0 {
		t.Logf("pending=%d after quiescence", totals.Pending(1))
		return false
	}
	return true
}

func TestSSSPProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property-based tests in short mode")
	}

	properties := gopter.NewProperties(nil)

	properties.Property("SchedulerInterchange", prop.ForAll(
		func(n int, raw []uint32) bool {
			return testSchedulerInterchangeInvariant(t, n, raw)
		},
		genNodeCount(),
		genRawEdges(),
	))

	properties.Property("DeltaInsensitivity", prop.ForAll(
		func(n int, raw []uint32, deltaA, deltaB uint32) bool {
			return testDeltaInsensitivityInvariant(t, n, raw, deltaA, deltaB)
		},
		genNodeCount(),
		genRawEdges(),
		genDelta(),
		genDelta(),
	))

	properties.Property("NoLoss", prop.ForAll(
		func(n int, raw []uint32) bool {
			return testNoLossInvariant(t, n, raw)
		},
		genNodeCount(),
		genRawEdges(),
	))

	properties.TestingRun(t)
}
