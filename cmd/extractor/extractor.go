// Package main implements the fdynamics extractor service.
// The extractor collects metrics, derives feature dynamics from them on an
// interval, and serves the latest result via HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/HatiCode/fdynamics/cmd/extractor/metrics"
	"github.com/HatiCode/fdynamics/pkg/adapters"
	"github.com/HatiCode/fdynamics/pkg/dynamics"
	"github.com/HatiCode/fdynamics/pkg/engineer"
	"github.com/HatiCode/fdynamics/pkg/extraction"
	"github.com/HatiCode/fdynamics/pkg/storage"
	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

// errNoData is returned by a tick whose collection came back empty.
var errNoData = errors.New("no observations collected")

// adapterColumns names the fields of the rows adapters produce.
var adapterColumns = tsdata.Columns{ID: "id", Kind: "kind", Sort: "ts", Value: "value"}

// Options holds the extractor's pipeline settings.
type Options struct {
	Configs     []dynamics.Config
	Engineering *engineer.Options
	// Partitions > 0 hash-partitions the dataset by id before extraction.
	Partitions int
	Lookback   time.Duration
}

// Extractor orchestrates the extraction loop: collect → normalize → extract → store.
type Extractor struct {
	source    string
	adapter   adapters.Adapter
	dynamics  *dynamics.Extractor
	store     storage.Store
	opts      Options
	logger    *slog.Logger
	metrics   *metrics.Metrics
	lastStore time.Time
}

// New creates a new Extractor.
func New(
	source string,
	adapter adapters.Adapter,
	dyn *dynamics.Extractor,
	store storage.Store,
	opts Options,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		source:   source,
		adapter:  adapter,
		dynamics: dyn,
		store:    store,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

// Run executes the extraction loop at regular intervals.
// Blocks until context is canceled.
func (e *Extractor) Run(ctx context.Context, interval time.Duration) error {
	e.logger.Info("starting extraction loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.tickAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("extraction loop stopped")
			return ctx.Err()
		case <-ticker.C:
			e.tickAndLog(ctx)
		}
	}
}

func (e *Extractor) tickAndLog(ctx context.Context) {
	if err := e.Tick(ctx); err != nil {
		if errors.Is(err, errNoData) {
			e.logger.Warn("extraction tick skipped", "source", e.source, "reason", err)
		} else {
			e.logger.Error("extraction tick failed", "source", e.source, "error", err)
		}
	}
	if !e.lastStore.IsZero() {
		e.metrics.SetResultAge(time.Since(e.lastStore).Seconds())
	}
}

// Tick performs one extraction cycle.
// Exported for testing purposes.
func (e *Extractor) Tick(ctx context.Context) error {
	start := time.Now()
	e.logger.Debug("starting extraction tick")

	df, collectDuration, err := e.collect(ctx)
	if err != nil {
		e.metrics.RecordError("adapter", "collect_failed")
		return fmt.Errorf("collect: %w", err)
	}
	if len(df.Rows) == 0 {
		return errNoData
	}

	ds, err := e.dataset(df)
	if err != nil {
		e.metrics.RecordError("tsdata", "normalize_failed")
		return fmt.Errorf("normalize: %w", err)
	}

	table, extractDuration, err := e.extract(ctx, ds)
	if err != nil {
		e.metrics.RecordError("dynamics", "extract_failed")
		return fmt.Errorf("extract: %w", err)
	}

	if err := e.storeResult(ctx, table); err != nil {
		e.metrics.RecordError("store", "put_failed")
		return fmt.Errorf("store: %w", err)
	}

	e.logger.Info("extraction tick complete",
		"source", e.source,
		"rows", len(df.Rows),
		"ids", table.Len(),
		"features", len(table.Columns),
		"collect_ms", collectDuration.Milliseconds(),
		"extract_ms", extractDuration.Milliseconds(),
		"total_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// collect retrieves observations from the adapter.
func (e *Extractor) collect(ctx context.Context) (*adapters.DataFrame, time.Duration, error) {
	start := time.Now()

	df, err := e.adapter.Collect(ctx, int(e.opts.Lookback.Seconds()))
	if err != nil {
		return nil, 0, err
	}

	duration := time.Since(start)
	e.metrics.RecordCollect(duration.Seconds())
	e.logger.Debug("collected observations",
		"adapter", e.adapter.Name(),
		"rows", len(df.Rows),
		"duration_ms", duration.Milliseconds(),
	)
	return df, duration, nil
}

// dataset normalizes df, applies input engineering and picks the scheduling.
func (e *Extractor) dataset(df *adapters.DataFrame) (tsdata.Dataset, error) {
	frame, err := tsdata.FromLong(df, adapterColumns)
	if err != nil {
		return nil, err
	}
	if e.opts.Engineering != nil {
		if frame, err = engineer.Differences(frame, *e.opts.Engineering); err != nil {
			return nil, fmt.Errorf("engineer: %w", err)
		}
	}

	if e.opts.Partitions <= 0 {
		return frame, nil
	}
	parts := tsdata.PartitionByID(frame.Observations(), e.opts.Partitions)
	pf, err := tsdata.NewPartitionedFrame(parts)
	if err != nil {
		return nil, err
	}
	return pf, nil
}

// extract runs feature dynamics for every configured window length.
func (e *Extractor) extract(ctx context.Context, ds tsdata.Dataset) (*extraction.Table, time.Duration, error) {
	start := time.Now()

	var (
		table *extraction.Table
		err   error
	)
	if len(e.opts.Configs) == 1 {
		table, err = e.dynamics.Extract(ctx, ds, e.opts.Configs[0])
	} else {
		table, err = e.dynamics.ExtractWindows(ctx, ds, e.opts.Configs)
	}
	if err != nil {
		return nil, 0, err
	}

	if inf := infiniteColumns(table); len(inf) > 0 {
		table = table.Drop(inf)
		e.metrics.AddDropped("non_finite", len(inf))
		e.logger.Warn("dropped non-finite feature columns", "source", e.source, "count", len(inf))
	}

	duration := time.Since(start)
	e.metrics.RecordExtract(duration.Seconds())
	e.metrics.SetFeatures(len(table.Columns))
	return table, duration, nil
}

// infiniteColumns returns the columns holding ±Inf, which JSON cannot carry.
func infiniteColumns(t *extraction.Table) map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range t.Columns {
		if slices.ContainsFunc(t.Values[c], func(v float64) bool { return math.IsInf(v, 0) }) {
			out[c] = struct{}{}
		}
	}
	return out
}

// storeResult persists the feature table.
func (e *Extractor) storeResult(ctx context.Context, table *extraction.Table) error {
	windows := make([]int, len(e.opts.Configs))
	for i, c := range e.opts.Configs {
		windows[i] = c.WindowLength
	}

	now := time.Now()
	result := storage.Result{
		Source:        e.source,
		GeneratedAt:   now,
		WindowLengths: windows,
		Features:      table,
	}
	if err := e.store.Put(ctx, result); err != nil {
		return err
	}
	e.lastStore = now

	e.logger.Debug("stored result", "source", e.source)
	return nil
}
