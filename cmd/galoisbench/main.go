// Command galoisbench runs SSSP over one graph under every named scheduler
// variant (the smq_* names are left out: they alias mq1..mq4) and reports wall-clock time for each, side by side. An ambient
// convenience for comparing -wl choices; not part of the core spec.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/khryptorgraphics/galois-scheduler/internal/driver"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/graphio"
	"github.com/khryptorgraphics/galois-scheduler/internal/ops"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
)

var variants = []string{
	"obim", "adap-obim",
	"mq1", "mq2", "mq3", "mq4",
	"hmq1", "hmq2", "hmq3", "hmq4",
	"adap-smq",
	"amq2_1_2", "amq2_1_4", "amq2_1_8", "amq2_3_4",
	"pq", "skiplist", "spraylist",
	"klsm256", "klsm16k", "klsm4m",
	"swarm", "heapswarm",
}

func main() {
	var threads int
	var delta uint32
	var startNode uint32

	root := &cobra.Command{
		Use:   "galoisbench <graph-file>",
		Short: "Compare SSSP wall-clock time across every scheduler variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], threads, delta, startNode)
		},
	}
	root.Flags().IntVar(&threads, "t", 1, "worker thread count")
	root.Flags().Uint32Var(&delta, "delta", 10, "OBIM bucket shift")
	root.Flags().Uint32Var(&startNode, "startNode", 0, "source node id")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, threads int, delta, startNode uint32) error {
	base, err := graphio.LoadCSR(path)
	if err != nil {
		return err
	}
	if int(startNode) >= base.NumNodes() {
		return fmt.Errorf("startNode %d out of range", startNode)
	}

	fmt.Printf("%-12s %12s %12s\n", "wl", "elapsed", "processed")
	for _, name := range variants {
		g, err := graphio.LoadCSR(path)
		if err != nil {
			return err
		}
		scheduler, err := sched.New(name, sched.Options{NumThreads: threads, Delta: delta})
		if err != nil {
			fmt.Printf("%-12s skipped: %v\n", name, err)
			continue
		}

		d := driver.New(scheduler, threads)
		source := graph.NodeID(startNode)
		g.Node(source).CasDist(g.Node(source).LoadDist(), graph.PackDist(0, 0))
		seed := []sched.Item{{Node: source, Key: ops.SSSPKey(0)}}

		start := time.Now()
		totals, err := d.ForEachLocal(seed, ops.SSSP(g))
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s error: %v\n", name, err)
			continue
		}
		fmt.Printf("%-12s %12s %12d\n", name, elapsed, totals.Productive())
	}
	return nil
}
