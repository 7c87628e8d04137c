// Package split presents a time series dataset cut into fixed-length,
// non-overlapping windows as a dataset of its own.
//
// Every (id, kind) series of length L becomes floor(L/size) windows; a
// trailing remainder shorter than size is discarded. A window is identified
// by WindowID{ID, Index}, carries exactly size samples, and renumbers its
// sort values to the local offsets 0..size-1. The views never copy or
// modify the source data.
//
// Two views exist, matching the two dataset capabilities:
//
//   - Iterable wraps a resident dataset and cuts windows while iterating.
//   - Applyable wraps a partitioned dataset and cuts windows inside each
//     partition, with no coordination between partitions.
//
// Partition-local windowing needs every series of an id inside a single
// partition. NewApplyable detects an id spread over several partitions while
// validating and refuses it with ErrPartitionStraddle.
package split

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"reflect"
	"strconv"

	"github.com/HatiCode/fdynamics/pkg/partition"
	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

var (
	// ErrInvalidSplitSize is returned for non-positive, non-integer, NaN or
	// oversized split sizes.
	ErrInvalidSplitSize = errors.New("invalid split size")

	// ErrPartitionStraddle is returned when the series of one id are found
	// in more than one partition.
	ErrPartitionStraddle = errors.New("id spans multiple partitions")
)

// WindowID is the composite id of a window: the id of the series it was cut
// from and its zero-based position in that series.
type WindowID struct {
	ID    any
	Index int
}

func (w WindowID) String() string {
	return fmt.Sprintf("%v/%d", w.ID, w.Index)
}

var windowIDType = reflect.TypeFor[WindowID]()

// ParseSplitSize validates a split size coming from an untyped source such
// as JSON, flags or environment variables. Only positive integral values are
// accepted.
func ParseSplitSize(v any) (int, error) {
	var f float64
	switch val := v.(type) {
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case float64:
		f = val
	case float32:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSplitSize, val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidSplitSize, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidSplitSize, v)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: %v is not positive", ErrInvalidSplitSize, v)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v is too large", ErrInvalidSplitSize, v)
	}
	return int(f), nil
}

func checkSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d is not positive", ErrInvalidSplitSize, size)
	}
	return nil
}

func tooLong(size int, s tsdata.Series) error {
	return fmt.Errorf("%w: %d exceeds the length %d of series (%v, %q)",
		ErrInvalidSplitSize, size, s.Len(), s.ID, s.Kind)
}

// New wraps ds in the view matching its scheduling capability.
func New(ctx context.Context, ds tsdata.Dataset, size int) (tsdata.Dataset, error) {
	switch ds.Scheduling() {
	case tsdata.Resident:
		it, ok := ds.(tsdata.Iterable)
		if !ok {
			return nil, fmt.Errorf("resident dataset %T is not iterable", ds)
		}
		return NewIterable(it, size)
	case tsdata.Partitioned:
		ap, ok := ds.(tsdata.Applyable)
		if !ok {
			return nil, fmt.Errorf("partitioned dataset %T is not applyable", ds)
		}
		return NewApplyable(ctx, ap, size)
	default:
		return nil, fmt.Errorf("unsupported scheduling %v", ds.Scheduling())
	}
}

// cut slices s into consecutive windows of size samples and drops the
// remainder. Window values alias the source slice.
func cut(s tsdata.Series, size int) []tsdata.Series {
	n := s.Len() / size
	out := make([]tsdata.Series, n)
	for i := range n {
		lo, hi := i*size, (i+1)*size
		local := make([]float64, size)
		for j := range local {
			local[j] = float64(j)
		}
		out[i] = tsdata.Series{
			ID:     WindowID{ID: s.ID, Index: i},
			Kind:   s.Kind,
			Sort:   local,
			Values: s.Values[lo:hi:hi],
		}
	}
	return out
}

// Iterable is the windowed view of a resident dataset.
type Iterable struct {
	root tsdata.Iterable
	size int
}

// NewIterable validates size against every series of root and returns the
// view. It fails with ErrInvalidSplitSize if size is not positive or longer
// than the shortest series.
func NewIterable(root tsdata.Iterable, size int) (*Iterable, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	for s := range root.Series() {
		if s.Len() < size {
			return nil, tooLong(size, s)
		}
	}
	return &Iterable{root: root, size: size}, nil
}

// SplitSize returns the window length.
func (v *Iterable) SplitSize() int { return v.size }

// Root returns the wrapped dataset.
func (v *Iterable) Root() tsdata.Iterable { return v.root }

// IDType is always WindowID: ids are composite, whatever the source id type.
func (v *Iterable) IDType() reflect.Type { return windowIDType }

func (v *Iterable) Scheduling() tsdata.Scheduling { return tsdata.Resident }

// Series yields, for each source series in order, its windows by increasing
// index.
func (v *Iterable) Series() iter.Seq[tsdata.Series] {
	return func(yield func(tsdata.Series) bool) {
		for s := range v.root.Series() {
			for _, w := range cut(s, v.size) {
				if !yield(w) {
					return
				}
			}
		}
	}
}

// Applyable is the windowed view of a partitioned dataset.
type Applyable struct {
	root  tsdata.Applyable
	parts partition.Bag[tsdata.Series]
	size  int
}

type layout struct {
	owner    map[any]int
	shortest *tsdata.Series
}

// NewApplyable validates size and the partition layout of root. It blocks
// while every source partition is evaluated once; the evaluated partitions
// back the view afterwards. Split sizes are checked against the shortest
// series. An id with series in two partitions fails with
// ErrPartitionStraddle, since the feature rows of one id must be pivoted
// together.
func NewApplyable(ctx context.Context, root tsdata.Applyable, size int) (*Applyable, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	parts, err := root.SeriesBag().Persist(ctx)
	if err != nil {
		return nil, err
	}

	acc := layout{owner: make(map[any]int)}
	acc, err = partition.Fold(ctx, parts, acc, func(acc layout, index int, part []tsdata.Series) (layout, error) {
		for _, s := range part {
			if prev, ok := acc.owner[s.ID]; ok && prev != index {
				return acc, fmt.Errorf("%w: id %v (kind %q) found in partitions %d and %d",
					ErrPartitionStraddle, s.ID, s.Kind, prev, index)
			}
			acc.owner[s.ID] = index
			if acc.shortest == nil || s.Len() < acc.shortest.Len() {
				acc.shortest = &s
			}
		}
		return acc, nil
	})
	if err != nil {
		return nil, err
	}
	if acc.shortest != nil && acc.shortest.Len() < size {
		return nil, tooLong(size, *acc.shortest)
	}
	return &Applyable{root: root, parts: parts, size: size}, nil
}

// SplitSize returns the window length.
func (v *Applyable) SplitSize() int { return v.size }

// Root returns the wrapped dataset.
func (v *Applyable) Root() tsdata.Applyable { return v.root }

// IDType is always WindowID.
func (v *Applyable) IDType() reflect.Type { return windowIDType }

func (v *Applyable) Scheduling() tsdata.Scheduling { return tsdata.Partitioned }

// SeriesBag cuts windows inside each partition. It is lazy.
func (v *Applyable) SeriesBag() partition.Bag[tsdata.Series] {
	size := v.size
	return partition.Map(v.parts, func(_ context.Context, part []tsdata.Series) ([]tsdata.Series, error) {
		var out []tsdata.Series
		for _, s := range part {
			out = append(out, cut(s, size)...)
		}
		return out, nil
	})
}
