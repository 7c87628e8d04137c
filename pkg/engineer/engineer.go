// Package engineer derives additional input series by differencing.
package engineer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

// ErrKinds is returned when differencing between series is requested for a
// dataset with fewer than two kinds.
var ErrKinds = errors.New("need at least two kinds")

// ErrLength is returned when two series of one id differ in length.
var ErrLength = errors.New("series lengths differ")

// Options selects the derived series.
type Options struct {
	// Within adds dt_<kind>: the first difference of each series, with
	// the first sample set to zero.
	Within bool
	// Between adds D_<a><b> = a - b for every pair of kinds a < b.
	Between bool
}

// Differences returns ds with the derived series added. The original series
// are kept unchanged.
func Differences(ds tsdata.Iterable, opts Options) (*tsdata.Frame, error) {
	var obs []tsdata.Observation
	byID := make(map[any]map[string]tsdata.Series)
	var ids []any
	kindSet := make(map[string]struct{})

	for s := range ds.Series() {
		for o := range s.Observations() {
			obs = append(obs, o)
		}
		if _, ok := byID[s.ID]; !ok {
			byID[s.ID] = make(map[string]tsdata.Series)
			ids = append(ids, s.ID)
		}
		byID[s.ID][s.Kind] = s
		kindSet[s.Kind] = struct{}{}
	}

	kinds := make([]string, 0, len(kindSet))
	for k := range kindSet {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	if opts.Between && len(kinds) < 2 {
		return nil, fmt.Errorf("difference between series: %w, have %d", ErrKinds, len(kinds))
	}

	for _, id := range ids {
		series := byID[id]
		if opts.Within {
			for _, k := range kinds {
				if s, ok := series[k]; ok {
					obs = append(obs, within(s)...)
				}
			}
		}
		if opts.Between {
			for i, a := range kinds {
				for _, b := range kinds[i+1:] {
					d, err := between(series[a], series[b])
					if err != nil {
						return nil, fmt.Errorf("id %v: %w", id, err)
					}
					obs = append(obs, d...)
				}
			}
		}
	}
	return tsdata.NewFrame(obs)
}

func within(s tsdata.Series) []tsdata.Observation {
	out := make([]tsdata.Observation, s.Len())
	for i := range s.Values {
		var d float64
		if i > 0 {
			d = s.Values[i] - s.Values[i-1]
		}
		out[i] = tsdata.Observation{ID: s.ID, Kind: "dt_" + s.Kind, Sort: s.Sort[i], Value: d}
	}
	return out
}

func between(a, b tsdata.Series) ([]tsdata.Observation, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("%w: %q has %d samples, %q has %d", ErrLength, a.Kind, a.Len(), b.Kind, b.Len())
	}
	out := make([]tsdata.Observation, a.Len())
	for i := range a.Values {
		out[i] = tsdata.Observation{ID: a.ID, Kind: "D_" + a.Kind + b.Kind, Sort: a.Sort[i], Value: a.Values[i] - b.Values[i]}
	}
	return out, nil
}
