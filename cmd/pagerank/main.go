// Command pagerank runs residual-priority PageRank over a CSR graph,
// propagating residual mass through the scheduler until it settles below
// tolerance.
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
		Use:   "pagerank <graph-file>",
		Short: "Parallel residual-priority PageRank over a CSR graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.GraphFile = args[0]
			return runPageRank(&cfg)
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

func runPageRank(cfg *config.Config) error {
	runID := uuid.New().String()
	logger := glog.Init("pagerank", cfg.LogLevel, glog.Format(cfg.LogFormat)).With().Str("run_id", runID).Logger()

	if err := cfg.ValidatePageRank(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	g, err := graphio.LoadCSR(cfg.GraphFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load graph")
		return err
	}
	if cfg.GraphTranspose != "" {
		if err := graphio.LoadTransposeInto(g, cfg.GraphTranspose); err != nil {
			logger.Error().Err(err).Msg("failed to load transpose")
			return err
		}
	}
	if !cfg.OutDegreeOnly && !g.HasTranspose() {
		err := galoiserr.New(galoiserr.KindInput, "pagerank.run",
			fmt.Errorf("in+out degree needs -graphTranspose; pass it or -outdeg"))
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	initial := float32(1 - ops.PRDamping)
	for n := 0; n < g.NumNodes(); n++ {
		g.Node(graph.NodeID(n)).ResetPageRank(initial)
	}

	var collectors *metrics.Collectors
	if cfg.MetricsAddr != "" {
		collectors = metrics.New("pagerank", cfg.Worklist)
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

	// Seed every node with the same initial residual mass (1-alpha)/N, added
	// directly to each node's residual, so the first round of relaxation has
	// work to do.
	seedResidual := initial / float32(max(g.NumNodes(), 1))
	seeds := make([]sched.Item, 0, g.NumNodes())
	for n := 0; n < g.NumNodes(); n++ {
		id := graph.NodeID(n)
		g.Node(id).AddResidual(seedResidual)
		deg := g.Degree(id, cfg.OutDegreeOnly)
		key := ops.PageRankKey(float64(seedResidual), cfg.Tolerance, cfg.Amp, deg)
		seeds = append(seeds, sched.Item{Node: id, Key: key})
	}

	conv := ops.NewConvergenceState(cfg.MaxIterations)
	d := driver.New(scheduler, cfg.Threads)

	start := time.Now()
	totals, err := d.ForEachLocal(seeds, ops.PageRank(g, cfg.Tolerance, cfg.Amp, cfg.OutDegreeOnly, cfg.SymmetricGraph, conv))
	elapsed := time.Since(start)
	if err != nil {
		logger.Error().Err(err).Msg("driver aborted")
		return err
	}
	if collectors != nil {
		collectors.ObserveTotals(totals.Dequeued, totals.Stale, totals.Pushed)
	}

	if conv.Capped() {
		logger.Warn().Int("max_iterations", cfg.MaxIterations).Msg("pagerank failed to converge before the iteration cap; returning best-effort results")
	} else if !cfg.NoVerify {
		if err := verify.PageRankResiduals(g, cfg.Tolerance); err != nil {
			logger.Error().Err(err).Msg("verification failed")
			return err
		}
	}

	logger.Info().
		Dur("elapsed", elapsed).
		Str("wl", cfg.Worklist).
		Int("threads", cfg.Threads).
		Uint64("processed", totals.Productive()).
		Msg("pagerank complete")

	return metrics.WriteResult(cfg.ResultFile, metrics.Result{
		Worklist:       cfg.Worklist,
		Suffix:         cfg.Suffix,
		NodesProcessed: totals.Productive(),
		Threads:        cfg.Threads,
		Elapsed:        elapsed,
	})
}
