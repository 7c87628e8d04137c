// Package tsdata defines the time series dataset consumed by feature
// extraction.
//
// A dataset is a collection of (id, kind, sort, value) observations grouped
// into series, one per (id, kind) pair, each ordered by its sort key. Two
// realizations exist and are told apart by their capability rather than by
// inspecting their concrete type:
//
//   - Iterable datasets are resident in memory and walked sequentially.
//   - Applyable datasets are partitioned and evaluated lazily through a
//     partition.Bag; results exist only after an explicit materialization.
package tsdata

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/HatiCode/fdynamics/pkg/partition"
)

// ErrIDType is returned when ids are missing, not comparable, or of mixed types.
var ErrIDType = errors.New("invalid id type")

// Observation is a single sample of one kind for one id.
type Observation struct {
	ID    any
	Kind  string
	Sort  float64
	Value float64
}

// Series is the sort-ordered run of observations sharing an id and a kind.
type Series struct {
	ID     any
	Kind   string
	Sort   []float64
	Values []float64
}

// Len returns the number of samples in the series.
func (s Series) Len() int {
	return len(s.Values)
}

// Observations yields the series as (id, kind, sort, value) tuples.
func (s Series) Observations() iter.Seq[Observation] {
	return func(yield func(Observation) bool) {
		for i, v := range s.Values {
			if !yield(Observation{ID: s.ID, Kind: s.Kind, Sort: s.Sort[i], Value: v}) {
				return
			}
		}
	}
}

// Scheduling distinguishes resident from partitioned datasets.
type Scheduling int

const (
	// Resident datasets are materialized and accessed synchronously.
	Resident Scheduling = iota
	// Partitioned datasets are lazily evaluated, one partition at a time.
	Partitioned
)

func (s Scheduling) String() string {
	switch s {
	case Resident:
		return "resident"
	case Partitioned:
		return "partitioned"
	default:
		return fmt.Sprintf("scheduling(%d)", int(s))
	}
}

// Dataset is the capability shared by every time series container.
type Dataset interface {
	// IDType reports the dynamic type of the ids the dataset yields.
	IDType() reflect.Type
	// Scheduling reports how the dataset is evaluated.
	Scheduling() Scheduling
}

// Iterable is a resident dataset walked one series at a time.
type Iterable interface {
	Dataset
	Series() iter.Seq[Series]
}

// Applyable is a partitioned dataset. Each partition of the returned bag
// holds the series that partition could assemble from its own rows.
type Applyable interface {
	Dataset
	SeriesBag() partition.Bag[Series]
}

type seriesKey struct {
	id   any
	kind string
}

// groupSeries groups observations by (id, kind) in first-seen order and
// orders each group by its sort key. Ties keep their input order.
func groupSeries(obs []Observation) []Series {
	index := make(map[seriesKey]int)
	var groups [][]Observation
	for _, o := range obs {
		k := seriesKey{id: o.ID, kind: o.Kind}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], o)
	}

	out := make([]Series, len(groups))
	for i, g := range groups {
		slices.SortStableFunc(g, func(a, b Observation) int {
			return cmp.Compare(a.Sort, b.Sort)
		})
		s := Series{
			ID:     g[0].ID,
			Kind:   g[0].Kind,
			Sort:   make([]float64, len(g)),
			Values: make([]float64, len(g)),
		}
		for j, o := range g {
			s.Sort[j] = o.Sort
			s.Values[j] = o.Value
		}
		out[i] = s
	}
	return out
}

// checkIDs verifies every id is non-nil, comparable and of one type.
// want may be nil, in which case the first id decides.
func checkIDs(obs []Observation, want reflect.Type) (reflect.Type, error) {
	for _, o := range obs {
		t := reflect.TypeOf(o.ID)
		if t == nil {
			return nil, fmt.Errorf("%w: nil id for kind %q", ErrIDType, o.Kind)
		}
		if !t.Comparable() {
			return nil, fmt.Errorf("%w: %s is not comparable", ErrIDType, t)
		}
		if want == nil {
			want = t
			continue
		}
		if t != want {
			return nil, fmt.Errorf("%w: mixed id types %s and %s", ErrIDType, want, t)
		}
	}
	return want, nil
}

// ToFloat64 converts numeric and boolean values to float64.
// Booleans map to 1 and 0.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int16:
		return float64(val), true
	case int8:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
