// Package metrics exposes Prometheus counters/histograms for scheduler and
// driver statistics. Registration only happens when a binary passes
// -metricsAddr; it is an ambient convenience, not required for a run.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the gauges/counters/histogram a single algorithm run
// reports, one instance per process.
type Collectors struct {
	registry *prometheus.Registry

	ItemsDequeued prometheus.Counter
	ItemsStale    prometheus.Counter
	ItemsPushed   prometheus.Counter
	RunSeconds    prometheus.Histogram
}

// New builds a fresh set of collectors labeled by the algorithm name
// (sssp/astar/pagerank) and scheduler variant, registered on a private
// registry rather than the global default one.
func New(algorithm, worklist string) *Collectors {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"algorithm": algorithm, "wl": worklist}

	c := &Collectors{
		registry: registry,
		ItemsDequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "galois",
			Subsystem:   "scheduler",
			Name:        "items_dequeued_total",
			Help:        "Work items popped from the scheduler and handed to the operator.",
			ConstLabels: labels,
		}),
		ItemsStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "galois",
			Subsystem:   "scheduler",
			Name:        "items_stale_total",
			Help:        "Dequeued items the operator discarded as stale.",
			ConstLabels: labels,
		}),
		ItemsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "galois",
			Subsystem:   "scheduler",
			Name:        "items_pushed_total",
			Help:        "Work items pushed into the scheduler.",
			ConstLabels: labels,
		}),
		RunSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "galois",
			Subsystem:   "driver",
			Name:        "run_seconds",
			Help:        "Wall-clock seconds for a full ForEachLocal run to quiescence.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(c.ItemsDequeued, c.ItemsStale, c.ItemsPushed, c.RunSeconds)
	return c
}

// ObserveTotals copies a driver.Totals-shaped result into the counters at
// shutdown. The driver shards its counters per-thread during the run;
// these are write-once at the end, after aggregation.
func (c *Collectors) ObserveTotals(dequeued, stale, pushed uint64) {
	c.ItemsDequeued.Add(float64(dequeued))
	c.ItemsStale.Add(float64(stale))
	c.ItemsPushed.Add(float64(pushed))
}

// Serve starts an HTTP server exposing /metrics on addr. It blocks; callers
// run it in its own goroutine. There is no shutdown hook: the server runs
// until it fails or the process exits, matching the ambient/non-required
// status of -metricsAddr.
func (c *Collectors) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
