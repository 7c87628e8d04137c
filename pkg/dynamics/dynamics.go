// Package dynamics extracts feature dynamics: features of the features of
// fixed-length windows of a time series.
//
// Every input series is cut into windows of Config.WindowLength samples.
// Stage one computes the feature time series calculators on each window,
// which yields one derived series per (id, feature) with one sample per
// window. Stage two computes the feature dynamics calculators on those
// derived series. Features missing for any window or any id are dropped
// after each stage, so the final table holds no missing values.
package dynamics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"time"

	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/completeness"
	"github.com/HatiCode/fdynamics/pkg/extraction"
	"github.com/HatiCode/fdynamics/pkg/names"
	"github.com/HatiCode/fdynamics/pkg/partition"
	"github.com/HatiCode/fdynamics/pkg/split"
	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

// ErrCompositeID is returned when a stage-one row does not carry a window id.
var ErrCompositeID = errors.New("feature row has no window id")

// Pipeline stages, as reported to a Recorder.
const (
	StageSplit             = "split"
	StageFeatureTimeseries = "feature_timeseries"
	StageFilterTimeseries  = "filter_timeseries"
	StageFeatureDynamics   = "feature_dynamics"
	StageFilterDynamics    = "filter_dynamics"
	StageJoinWindows       = "join_windows"
)

// Config parameterizes one feature dynamics run.
type Config struct {
	// WindowLength is the number of samples per window.
	WindowLength int

	// Calculators for stage one, keyed like extraction.Options.
	FeatureTimeseriesParameters       calculators.FCParameters
	FeatureTimeseriesKindToParameters calculators.KindToFCParameters

	// Calculators for stage two. Kinds here are window-tagged feature
	// time series names.
	FeatureDynamicsParameters       calculators.FCParameters
	FeatureDynamicsKindToParameters calculators.KindToFCParameters
}

func (c Config) timeseriesOptions() extraction.Options {
	return extraction.Options{Default: c.FeatureTimeseriesParameters, KindTo: c.FeatureTimeseriesKindToParameters}
}

func (c Config) dynamicsOptions() extraction.Options {
	return extraction.Options{Default: c.FeatureDynamicsParameters, KindTo: c.FeatureDynamicsKindToParameters}
}

// Recorder observes pipeline runs. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	AddDropped(stage string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStage(string, time.Duration) {}

func (nopRecorder) AddDropped(string, int) {}

// Extractor runs the feature dynamics pipeline.
type Extractor struct {
	extractor *extraction.Extractor
	recorder  Recorder
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry sets the calculator registry. The default registry is used
// otherwise.
func WithRegistry(reg *calculators.Registry) Option {
	return func(e *Extractor) { e.extractor = extraction.New(reg) }
}

// WithRecorder sets the stage recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Extractor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		extractor: extraction.New(nil),
		recorder:  nopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs both stages over ds. Resident datasets are processed in the
// calling goroutine; partitioned datasets are processed partition by
// partition and synchronize only to filter incomplete features.
func (e *Extractor) Extract(ctx context.Context, ds tsdata.Dataset, cfg Config) (*extraction.Table, error) {
	start := time.Now()

	view, err := e.split(ctx, ds, cfg.WindowLength)
	if err != nil {
		return nil, err
	}

	var table *extraction.Table
	switch v := view.(type) {
	case *split.Iterable:
		table, err = e.resident(ctx, v, cfg)
	case *split.Applyable:
		table, err = e.partitioned(ctx, v, ds.IDType(), cfg)
	default:
		err = fmt.Errorf("unsupported windowed view %T", view)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("extracted feature dynamics",
		"window_length", cfg.WindowLength,
		"scheduling", ds.Scheduling().String(),
		"ids", table.Len(),
		"features", len(table.Columns),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

func (e *Extractor) split(ctx context.Context, ds tsdata.Dataset, size int) (tsdata.Dataset, error) {
	start := time.Now()
	view, err := split.New(ctx, ds, size)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	e.recorder.ObserveStage(StageSplit, time.Since(start))
	return view, nil
}

func (e *Extractor) resident(ctx context.Context, view *split.Iterable, cfg Config) (*extraction.Table, error) {
	start := time.Now()
	rows, err := e.extractor.Long(ctx, view, cfg.timeseriesOptions())
	if err != nil {
		return nil, fmt.Errorf("extract feature time series: %w", err)
	}
	obs, err := flatten(rows, cfg.WindowLength)
	if err != nil {
		return nil, err
	}
	e.recorder.ObserveStage(StageFeatureTimeseries, time.Since(start))

	start = time.Now()
	kept, dropped := completeness.Filter(obs, observationKind, missingValue)
	e.dropped(StageFilterTimeseries, completeness.Sorted(dropped))
	e.recorder.ObserveStage(StageFilterTimeseries, time.Since(start))

	frame, err := tsdata.NewFrame(kept)
	if err != nil {
		return nil, fmt.Errorf("feature time series: %w", err)
	}

	start = time.Now()
	table, err := e.extractor.Wide(ctx, frame, cfg.dynamicsOptions())
	if err != nil {
		return nil, fmt.Errorf("extract feature dynamics: %w", err)
	}
	e.recorder.ObserveStage(StageFeatureDynamics, time.Since(start))

	start = time.Now()
	table, droppedCols := completeness.FilterColumns(table)
	e.dropped(StageFilterDynamics, completeness.Sorted(droppedCols))
	e.recorder.ObserveStage(StageFilterDynamics, time.Since(start))
	return table, nil
}

func (e *Extractor) partitioned(ctx context.Context, view *split.Applyable, idType reflect.Type, cfg Config) (*extraction.Table, error) {
	window := cfg.WindowLength

	// Stage one stays lazy until the filter needs every partition.
	start := time.Now()
	rows := e.extractor.LongPartitioned(view, cfg.timeseriesOptions())
	obs := partition.Map(rows, func(_ context.Context, part []extraction.Row) ([]tsdata.Observation, error) {
		return flatten(part, window)
	})
	kept, dropped, err := completeness.FilterPartitioned(ctx, obs, observationKind, missingValue)
	if err != nil {
		return nil, fmt.Errorf("extract feature time series: %w", err)
	}
	e.dropped(StageFilterTimeseries, completeness.Sorted(dropped))
	e.recorder.ObserveStage(StageFeatureTimeseries, time.Since(start))

	start = time.Now()
	frame := tsdata.NewLazyFrame(kept, idType)
	tables := e.extractor.WidePartitioned(frame, cfg.dynamicsOptions())
	table, droppedCols, err := completeness.FilterColumnsPartitioned(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("extract feature dynamics: %w", err)
	}
	e.dropped(StageFilterDynamics, completeness.Sorted(droppedCols))
	e.recorder.ObserveStage(StageFeatureDynamics, time.Since(start))
	return table, nil
}

func (e *Extractor) dropped(stage string, features []string) {
	if len(features) == 0 {
		return
	}
	e.recorder.AddDropped(stage, len(features))
	e.logger.Debug("dropped incomplete features", "stage", stage, "count", len(features), "features", features)
}

// flatten turns stage-one rows into observations of the derived series:
// the window id splits into the original id and the window index, values
// become floats, and names are tagged with the window length. Values that
// cannot be read as numbers become NaN.
func flatten(rows []extraction.Row, window int) ([]tsdata.Observation, error) {
	out := make([]tsdata.Observation, len(rows))
	tagged := make(map[string]string)
	for i, r := range rows {
		wid, ok := r.ID.(split.WindowID)
		if !ok {
			return nil, fmt.Errorf("%w: %v (%T)", ErrCompositeID, r.ID, r.ID)
		}

		kind, ok := tagged[r.Feature]
		if !ok {
			var err error
			if kind, err = names.EncodeWindowTag(r.Feature, window); err != nil {
				return nil, err
			}
			tagged[r.Feature] = kind
		}

		v, ok := tsdata.ToFloat64(r.Value)
		if !ok {
			v = math.NaN()
		}
		out[i] = tsdata.Observation{ID: wid.ID, Kind: kind, Sort: float64(wid.Index), Value: v}
	}
	return out, nil
}

func observationKind(o tsdata.Observation) string { return o.Kind }

func missingValue(o tsdata.Observation) bool { return math.IsNaN(o.Value) }
