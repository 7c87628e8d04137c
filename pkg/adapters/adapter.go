package adapters

import (
	"context"
	"time"
)

// Row represents a single tabular observation.
// Example: {"id": "api-0", "kind": "rps", "ts": "2025-10-25T17:00:00Z", "value": 312.4}
type Row map[string]any

// DataFrame is a lightweight structure for tabular data returned by adapters.
// Rows may be long (one observation per row) or wide (one kind per column);
// package tsdata turns either shape into a dataset.
type DataFrame struct {
	Rows []Row
}

// Adapter is the interface that all input adapters implement.
//
// Adapters fetch raw data from an external system, shape it into a
// DataFrame, and leave normalization and feature extraction to the upper
// layers.
//
// The Collect() call is synchronous and should respect context cancellation
// and deadlines.
type Adapter interface {
	// Collect fetches observations for the last windowSeconds and returns them
	// as a DataFrame. It must never panic.
	Collect(ctx context.Context, windowSeconds int) (*DataFrame, error)

	// Name returns a short, unique identifier for the adapter.
	Name() string
}

// AlignTimestamp truncates ts to a multiple of stepSec.
func AlignTimestamp(ts time.Time, stepSec int) time.Time {
	return ts.Truncate(time.Duration(stepSec) * time.Second)
}
