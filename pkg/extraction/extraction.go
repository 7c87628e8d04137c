// Package extraction runs calculators over every series of a dataset in a
// single pass.
//
// Long output holds one Row per (id, feature). Wide output pivots those rows
// into a Table with one row per id and one column per feature. Feature names
// are raw names, <kind>__<calculator>[__<key>_<value>...].
package extraction

import (
	"context"
	"fmt"

	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/names"
	"github.com/HatiCode/fdynamics/pkg/partition"
	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

// Row is one computed feature of one id. Value is a float64, int or bool.
type Row struct {
	ID      any
	Feature string
	Value   any
}

// Options selects the calculators run for each kind. Kinds present in
// KindTo use their own settings and every other kind uses Default. With a
// nil Default, kinds missing from a non-empty KindTo are skipped; with both
// unset every registered calculator runs with its default parameters.
type Options struct {
	Default calculators.FCParameters
	KindTo  calculators.KindToFCParameters
}

func (o Options) forKind(kind string, reg *calculators.Registry) calculators.FCParameters {
	if fcs, ok := o.KindTo[kind]; ok {
		return fcs
	}
	if o.Default != nil {
		return o.Default
	}
	if len(o.KindTo) == 0 {
		return calculators.ComprehensiveFor(reg)
	}
	return nil
}

func (o Options) validate(reg *calculators.Registry) error {
	if err := reg.Validate(o.Default); err != nil {
		return err
	}
	for _, kind := range o.KindTo.Kinds() {
		if err := reg.Validate(o.KindTo[kind]); err != nil {
			return fmt.Errorf("kind %q: %w", kind, err)
		}
	}
	return nil
}

// Extractor computes features with the calculators of Registry.
type Extractor struct {
	Registry *calculators.Registry
}

// New returns an Extractor using reg, or the default registry when reg is nil.
func New(reg *calculators.Registry) *Extractor {
	return &Extractor{Registry: reg}
}

func (e *Extractor) registry() *calculators.Registry {
	if e == nil || e.Registry == nil {
		return calculators.Default()
	}
	return e.Registry
}

// Long computes the features of every series of ds.
func (e *Extractor) Long(ctx context.Context, ds tsdata.Iterable, opts Options) ([]Row, error) {
	reg := e.registry()
	if err := opts.validate(reg); err != nil {
		return nil, err
	}

	var rows []Row
	for s := range ds.Series() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := computeSeries(reg, s, opts.forKind(s.Kind, reg))
		if err != nil {
			return nil, err
		}
		rows = append(rows, out...)
	}
	return rows, nil
}

// LongPartitioned computes features partition by partition. It is lazy;
// invalid options surface when the bag is materialized.
func (e *Extractor) LongPartitioned(ds tsdata.Applyable, opts Options) partition.Bag[Row] {
	reg := e.registry()
	return partition.Map(ds.SeriesBag(), func(ctx context.Context, part []tsdata.Series) ([]Row, error) {
		if err := opts.validate(reg); err != nil {
			return nil, err
		}
		var rows []Row
		for _, s := range part {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := computeSeries(reg, s, opts.forKind(s.Kind, reg))
			if err != nil {
				return nil, err
			}
			rows = append(rows, out...)
		}
		return rows, nil
	})
}

// Wide computes features and pivots them, materializing partitioned
// datasets.
func (e *Extractor) Wide(ctx context.Context, ds tsdata.Dataset, opts Options) (*Table, error) {
	switch v := ds.(type) {
	case tsdata.Iterable:
		rows, err := e.Long(ctx, v, opts)
		if err != nil {
			return nil, err
		}
		return Pivot(rows), nil
	case tsdata.Applyable:
		rows, err := e.LongPartitioned(v, opts).Collect(ctx)
		if err != nil {
			return nil, err
		}
		return Pivot(rows), nil
	default:
		return nil, fmt.Errorf("dataset %T is neither iterable nor applyable", ds)
	}
}

// WidePartitioned pivots every partition on its own. It is lazy.
func (e *Extractor) WidePartitioned(ds tsdata.Applyable, opts Options) partition.Bag[*Table] {
	return partition.Map(e.LongPartitioned(ds, opts), func(_ context.Context, rows []Row) ([]*Table, error) {
		return []*Table{Pivot(rows)}, nil
	})
}

func computeSeries(reg *calculators.Registry, s tsdata.Series, fcs calculators.FCParameters) ([]Row, error) {
	if err := names.CheckField(s.Kind); err != nil {
		return nil, fmt.Errorf("kind of series %v: %w", s.ID, err)
	}
	var rows []Row
	for _, name := range fcs.Names() {
		if err := names.CheckField(name); err != nil {
			return nil, fmt.Errorf("calculator: %w", err)
		}
		calc, err := reg.Lookup(name)
		if err != nil {
			return nil, err
		}

		sets := fcs[name]
		if sets == nil {
			sets = []calculators.Params{nil}
		}
		for _, params := range sets {
			segments, err := calculators.FormatParams(params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			v, err := calc.Fn(s.Values, params)
			if err != nil {
				return nil, fmt.Errorf("%s on (%v, %q): %w", name, s.ID, s.Kind, err)
			}
			rows = append(rows, Row{
				ID:      s.ID,
				Feature: names.RawName(s.Kind, name, segments),
				Value:   v,
			})
		}
	}
	return rows, nil
}
