// Command astar runs A* search toward a destination node over a CSR graph
// with coordinates, using an Equirectangular distance heuristic.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/khryptorgraphics/galois-scheduler/internal/config"
	"github.com/khryptorgraphics/galois-scheduler/internal/driver"
	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
	"github.com/khryptorgraphics/galois-scheduler/internal/glog"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
	"github.com/khryptorgraphics/galois-scheduler/internal/graphio"
	"github.com/khryptorgraphics/galois-scheduler/internal/metrics"
	"github.com/khryptorgraphics/galois-scheduler/internal/ops"
	"github.com/khryptorgraphics/galois-scheduler/internal/sched"
	"github.com/khryptorgraphics/galois-scheduler/internal/verify"
)

var cfgFile string

func main() {
	cfg := config.Defaults()

	root := &cobra.Command{
		Use:   "astar <graph-file>",
		Short: "Parallel A* search over a CSR graph with coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.GraphFile = args[0]
			return runAStar(&cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config overlay")
	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		// Flags were already parsed into cfg; re-apply the explicitly set
		// ones after the overlay so they win over it.
		set := map[string]string{}
		cmd.Flags().Visit(func(f *pflag.Flag) { set[f.Name] = f.Value.String() })
		cfg = *loaded
		for name, value := range set {
			if err := cmd.Flags().Set(name, value); err != nil {
				return err
			}
		}
		return nil
	}
	config.RegisterFlags(root.Flags(), &cfg)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAStar(cfg *config.Config) error {
	runID := uuid.New().String()
	logger := glog.Init("astar", cfg.LogLevel, glog.Format(cfg.LogFormat)).With().Str("run_id", runID).Logger()

	if err := cfg.ValidateAStar(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	g, err := graphio.LoadCSR(cfg.GraphFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load graph")
		return err
	}
	if err := graphio.LoadCoords(g, cfg.CoordFile); err != nil {
		logger.Error().Err(err).Msg("failed to load coordinates")
		return err
	}
	if int(cfg.StartNode) >= g.NumNodes() || int(cfg.DestNode) >= g.NumNodes() {
		err := galoiserr.New(galoiserr.KindInput, "astar.run",
			fmt.Errorf("startNode/destNode out of range (graph has %d nodes)", g.NumNodes()))
		logger.Error().Err(err).Msg("invalid node flags")
		return err
	}

	var collectors *metrics.Collectors
	if cfg.MetricsAddr != "" {
		collectors = metrics.New("astar", cfg.Worklist)
		go func() {
			if err := collectors.Serve(cfg.MetricsAddr); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	scheduler, err := sched.New(cfg.Worklist, sched.Options{NumThreads: cfg.Threads, Delta: cfg.Delta})
	if err != nil {
		logger.Error().Err(err).Msg("unknown scheduler")
		return err
	}

	d := driver.New(scheduler, cfg.Threads)
	source, dest := graph.NodeID(cfg.StartNode), graph.NodeID(cfg.DestNode)
	g.Node(source).CasDist(g.Node(source).LoadDist(), graph.PackDist(0, 0))
	h0 := ops.Heuristic(g, source, dest, cfg.HeuristicScalar)
	seed := []sched.Item{{Node: source, Key: ops.AStarKey(0, h0)}}

	start := time.Now()
	totals, err := d.ForEachLocal(seed, ops.AStar(g, dest, cfg.HeuristicScalar))
	elapsed := time.Since(start)
	if err != nil {
		logger.Error().Err(err).Msg("driver aborted")
		return err
	}
	if collectors != nil {
		collectors.ObserveTotals(totals.Dequeued, totals.Stale, totals.Pushed)
	}

	if !cfg.NoVerify {
		if err := verify.ShortestPaths(g, source); err != nil {
			logger.Error().Err(err).Msg("verification failed")
			return err
		}
	}

	logger.Info().
		Uint32("dest_node", cfg.DestNode).
		Uint32("dist", g.Node(dest).LoadDist().Dist()).
		Dur("elapsed", elapsed).
		Str("wl", cfg.Worklist).
		Int("threads", cfg.Threads).
		Float64("heuristic_scalar", cfg.HeuristicScalar).
		Msg("astar complete")

	delta := cfg.Delta
	return metrics.WriteResult(cfg.ResultFile, metrics.Result{
		Worklist:       cfg.Worklist,
		Suffix:         cfg.Suffix,
		NodesProcessed: totals.Productive(),
		Threads:        cfg.Threads,
		Delta:          &delta,
		Elapsed:        elapsed,
	})
}
