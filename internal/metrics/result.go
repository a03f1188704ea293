package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
)

// Result is one run's reportable outcome, appended to -resultFile as two
// CSV-style lines: "<wl>,<nodesProcessed>,<threads>[,<delta>]" and a
// separate elapsed-time line.
type Result struct {
	Worklist       string
	Suffix         string
	NodesProcessed uint64
	Threads        int
	Delta          *uint32 // nil for algorithms where delta doesn't apply
	Elapsed        time.Duration
}

func (r Result) wlName() string {
	if r.Suffix == "" {
		return r.Worklist
	}
	return r.Worklist + r.Suffix
}

// WriteResult appends Result to path, creating it if needed. An empty path
// is a no-op (the -resultFile flag is optional).
func WriteResult(path string, r Result) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return galoiserr.New(galoiserr.KindInput, "metrics.WriteResult", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s,%d,%d", r.wlName(), r.NodesProcessed, r.Threads)
	if r.Delta != nil {
		line += fmt.Sprintf(",%d", *r.Delta)
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		return galoiserr.New(galoiserr.KindInput, "metrics.WriteResult", err)
	}
	if _, err := fmt.Fprintf(f, "elapsed,%.6f\n", r.Elapsed.Seconds()); err != nil {
		return galoiserr.New(galoiserr.KindInput, "metrics.WriteResult", err)
	}
	return nil
}
