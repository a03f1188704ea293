// Package config parses the CLI surface shared by cmd/sssp, cmd/astar, and
// cmd/pagerank, with an optional YAML overlay loaded through viper.
package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
)

// Config holds the flags shared across all three binaries. Not every field
// applies to every binary; each cmd validates the subset it needs (see
// Validate*).
type Config struct {
	GraphFile      string `yaml:"graph_file" mapstructure:"graph_file"`
	GraphTranspose string `yaml:"graph_transpose" mapstructure:"graph_transpose"`
	SymmetricGraph bool   `yaml:"symmetric_graph" mapstructure:"symmetric_graph"`
	CoordFile      string `yaml:"coord_file" mapstructure:"coord_file"`

	StartNode  uint32 `yaml:"start_node" mapstructure:"start_node"`
	ReportNode uint32 `yaml:"report_node" mapstructure:"report_node"`
	DestNode   uint32 `yaml:"dest_node" mapstructure:"dest_node"`

	Delta    uint32 `yaml:"delta" mapstructure:"delta"`
	Worklist string `yaml:"wl" mapstructure:"wl"`

	Tolerance       float64 `yaml:"tolerance" mapstructure:"tolerance"`
	Amp             float64 `yaml:"amp" mapstructure:"amp"`
	OutDegreeOnly   bool    `yaml:"outdeg" mapstructure:"outdeg"`
	MaxIterations   int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	HeuristicScalar float64 `yaml:"heuristic_scalar" mapstructure:"heuristic_scalar"`

	ResultFile string `yaml:"result_file" mapstructure:"result_file"`
	Suffix     string `yaml:"suff" mapstructure:"suff"`
	Threads    int    `yaml:"threads" mapstructure:"threads"`
	NoVerify   bool   `yaml:"noverify" mapstructure:"noverify"`

	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat   string `yaml:"log_format" mapstructure:"log_format"`
}

// Defaults returns the documented flag defaults (delta=10, tolerance,
// etc.), plus the ambient logging/metrics defaults this repository adds.
func Defaults() Config {
	return Config{
		Delta:           10,
		Worklist:        "obim",
		Tolerance:       1e-6,
		Amp:             100,
		MaxIterations:   1000,
		HeuristicScalar: 0.75,
		Threads:         1,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load builds a Config from defaults, overlaid with an optional YAML file
// at configFile (empty means "no overlay"). The cmd binaries call it from
// cobra's PreRunE, after flags are parsed, and then re-apply every flag
// that was explicitly set on the command line, so flags always win over
// the overlay and unset flags take the overlay's value.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	cfg := Defaults()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, galoiserr.New(galoiserr.KindInput, "config.Load", err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, galoiserr.New(galoiserr.KindInput, "config.Load", err)
		}
	}
	return &cfg, nil
}

// RegisterFlags binds pflag flags for the full CLI surface onto fs. The
// positional <graph-file> argument is consumed separately by the caller
// (cobra Args), not registered here.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.GraphTranspose, "graphTranspose", cfg.GraphTranspose, "path to a transpose CSR file")
	fs.BoolVar(&cfg.SymmetricGraph, "symmetricGraph", cfg.SymmetricGraph, "treat the input graph as symmetric")
	fs.StringVar(&cfg.CoordFile, "coords", cfg.CoordFile, "path to an A* coordinate file (lines: v id x y)")

	fs.Uint32Var(&cfg.StartNode, "startNode", cfg.StartNode, "source node id")
	fs.Uint32Var(&cfg.ReportNode, "reportNode", cfg.ReportNode, "node id to report the distance of")
	fs.Uint32Var(&cfg.DestNode, "destNode", cfg.DestNode, "destination node id (A*)")

	fs.Uint32Var(&cfg.Delta, "delta", cfg.Delta, "OBIM bucket shift")
	fs.StringVar(&cfg.Worklist, "wl", cfg.Worklist, "scheduler variant name")

	fs.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "PageRank residual convergence tolerance")
	fs.Float64Var(&cfg.Amp, "amp", cfg.Amp, "PageRank key amplification scalar")
	fs.BoolVar(&cfg.OutDegreeOnly, "outdeg", cfg.OutDegreeOnly, "use out-degree only (not in+out) for PageRank's key")
	fs.IntVar(&cfg.MaxIterations, "maxIterations", cfg.MaxIterations, "PageRank iteration cap before reporting non-convergence")
	fs.Float64Var(&cfg.HeuristicScalar, "heuristicScalar", cfg.HeuristicScalar, "A* heuristic admissibility scalar (1.0 = admissible)")

	fs.StringVar(&cfg.ResultFile, "resultFile", cfg.ResultFile, "path to append one CSV result line to")
	fs.StringVar(&cfg.Suffix, "suff", cfg.Suffix, "suffix appended to the -wl name in the result line")
	fs.IntVar(&cfg.Threads, "t", cfg.Threads, "active worker thread count")
	fs.BoolVar(&cfg.NoVerify, "noverify", cfg.NoVerify, "skip the post-run consistency check")

	fs.StringVar(&cfg.MetricsAddr, "metricsAddr", cfg.MetricsAddr, "if set, serve Prometheus metrics on this address")
	fs.StringVar(&cfg.LogLevel, "logLevel", cfg.LogLevel, "zerolog level (debug/info/warn/error)")
	fs.StringVar(&cfg.LogFormat, "logFormat", cfg.LogFormat, "console or json")
}
