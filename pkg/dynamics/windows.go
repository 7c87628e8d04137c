package dynamics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HatiCode/fdynamics/pkg/completeness"
	"github.com/HatiCode/fdynamics/pkg/extraction"
	"github.com/HatiCode/fdynamics/pkg/names"
	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

// ExtractWindows runs one pipeline per configuration concurrently and
// joins the results on id. Column names never collide across window
// lengths because they carry the window tag. Columns left incomplete by
// the join are dropped.
func (e *Extractor) ExtractWindows(ctx context.Context, ds tsdata.Dataset, cfgs []Config) (*extraction.Table, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no window configuration")
	}

	tables := make([]*extraction.Table, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			t, err := e.Extract(gctx, ds, cfg)
			if err != nil {
				return fmt.Errorf("window length %d: %w", cfg.WindowLength, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start := time.Now()
	joined, dropped := completeness.FilterColumns(extraction.JoinOuter(tables))
	e.dropped(StageJoinWindows, completeness.Sorted(dropped))
	e.recorder.ObserveStage(StageJoinWindows, time.Since(start))
	return joined, nil
}

// ConfigsFromDictionaries turns the dictionaries built by
// names.BuildDictionaries into one configuration per window length. Only the
// listed kinds and features are computed.
func ConfigsFromDictionaries(fts, fd names.Dictionary) ([]Config, error) {
	var cfgs []Config
	for _, w := range fts.Windows() {
		dyn, ok := fd[w]
		if !ok {
			return nil, fmt.Errorf("window length %d has no feature dynamics settings", w)
		}
		cfgs = append(cfgs, Config{
			WindowLength:                      w,
			FeatureTimeseriesKindToParameters: fts[w],
			FeatureDynamicsKindToParameters:   dyn,
		})
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("empty feature dictionary")
	}
	return cfgs, nil
}

// ExtractFromDictionaries recomputes the features described by a pair of
// dictionaries.
func (e *Extractor) ExtractFromDictionaries(ctx context.Context, ds tsdata.Dataset, fts, fd names.Dictionary) (*extraction.Table, error) {
	cfgs, err := ConfigsFromDictionaries(fts, fd)
	if err != nil {
		return nil, err
	}
	return e.ExtractWindows(ctx, ds, cfgs)
}
