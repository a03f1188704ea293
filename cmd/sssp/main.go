// Command sssp runs single-source shortest path over a CSR graph using the
// concurrent priority scheduler family to drive the relaxation.
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
		Use:   "sssp <graph-file>",
		Short: "Parallel single-source shortest path over a CSR graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.GraphFile = args[0]
			return runSSSP(&cfg)
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

func runSSSP(cfg *config.Config) error {
	runID := uuid.New().String()
	logger := glog.Init("sssp", cfg.LogLevel, glog.Format(cfg.LogFormat)).With().Str("run_id", runID).Logger()

	if err := cfg.ValidateSSSP(); err != nil {
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
			return err
		}
	}
	if int(cfg.StartNode) >= g.NumNodes() || int(cfg.ReportNode) >= g.NumNodes() {
		err := galoiserr.New(galoiserr.KindInput, "sssp.run", fmt.Errorf("startNode %d or reportNode %d out of range (graph has %d nodes)", cfg.StartNode, cfg.ReportNode, g.NumNodes()))
		logger.Error().Err(err).Msg("invalid node flags")
		return err
	}

	var collectors *metrics.Collectors
	if cfg.MetricsAddr != "" {
		collectors = metrics.New("sssp", cfg.Worklist)
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
	source := graph.NodeID(cfg.StartNode)
	seed := []sched.Item{{Node: source, Key: ops.SSSPKey(0)}}
	g.Node(source).CasDist(g.Node(source).LoadDist(), graph.PackDist(0, 0))

	start := time.Now()
	totals, err := d.ForEachLocal(seed, ops.SSSP(g))
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

	reportNode := graph.NodeID(cfg.ReportNode)
	logger.Info().
		Uint32("report_node", cfg.ReportNode).
		Uint32("dist", g.Node(reportNode).LoadDist().Dist()).
		Dur("elapsed", elapsed).
		Str("wl", cfg.Worklist).
		Int("threads", cfg.Threads).
		Msg("sssp complete")

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
