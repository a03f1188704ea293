package config

import (
	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
)

// ValidateCommon checks the fields every binary needs: a graph file path
// and a sane thread count. Invalid input fails fast with a diagnostic and
// a nonzero exit rather than running with a silently-defaulted value.
func (c *Config) ValidateCommon() error {
	if c.GraphFile == "" {
		return galoiserr.New(galoiserr.KindInput, "config.Validate", errRequired("graph-file"))
	}
	if c.Threads < 1 {
		return galoiserr.New(galoiserr.KindInput, "config.Validate", errRequired("-t must be >= 1"))
	}
	return nil
}

// ValidateSSSP checks only the common fields; startNode and reportNode are
// range-checked by the caller once the node count is known.
func (c *Config) ValidateSSSP() error {
	return c.ValidateCommon()
}

// ValidateAStar additionally requires a coordinate file; startNode and
// destNode are range-checked by the caller once the node count is known.
func (c *Config) ValidateAStar() error {
	if err := c.ValidateCommon(); err != nil {
		return err
	}
	if c.CoordFile == "" {
		return galoiserr.New(galoiserr.KindInput, "config.Validate", errRequired("-coords"))
	}
	return nil
}

// ValidatePageRank additionally requires a positive tolerance and amp.
func (c *Config) ValidatePageRank() error {
	if err := c.ValidateCommon(); err != nil {
		return err
	}
	if c.Tolerance <= 0 {
		return galoiserr.New(galoiserr.KindInput, "config.Validate", errRequired("-tolerance must be > 0"))
	}
	if c.Amp <= 0 {
		return galoiserr.New(galoiserr.KindInput, "config.Validate", errRequired("-amp must be > 0"))
	}
	return nil
}

type errRequired string

func (e errRequired) Error() string { return "missing or invalid: " + string(e) }
