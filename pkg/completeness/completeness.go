// Package completeness drops every feature that is missing anywhere.
//
// A designator (a feature name, or a column of a wide table) with at least
// one missing value is excluded as a whole. Resident data is filtered in one
// pass. Partitioned data is filtered in two: the designators missing in any
// partition are reduced into one set, which is then applied to every
// partition.
package completeness

import (
	"context"
	"maps"
	"math"
	"slices"

	"github.com/HatiCode/fdynamics/pkg/extraction"
	"github.com/HatiCode/fdynamics/pkg/partition"
)

// Set is a set of designators.
type Set[K comparable] map[K]struct{}

// Sorted returns the members of a string set in order.
func Sorted(s Set[string]) []string {
	return slices.Sorted(maps.Keys(s))
}

// Missing returns the designators of rows for which missing reports true.
func Missing[T any, K comparable](rows []T, key func(T) K, missing func(T) bool) Set[K] {
	out := make(Set[K])
	for _, r := range rows {
		if missing(r) {
			out[key(r)] = struct{}{}
		}
	}
	return out
}

// Exclude returns the rows whose designator is not in drop. The input is
// not modified.
func Exclude[T any, K comparable](rows []T, key func(T) K, drop Set[K]) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := drop[key(r)]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// Filter removes every row sharing a designator with a missing row. It
// returns the kept rows and the excluded designators.
func Filter[T any, K comparable](rows []T, key func(T) K, missing func(T) bool) ([]T, Set[K]) {
	drop := Missing(rows, key, missing)
	return Exclude(rows, key, drop), drop
}

// FilterPartitioned is Filter for partitioned rows. The bag is materialized
// once; the returned bag is backed by the filtered partitions.
func FilterPartitioned[T any, K comparable](ctx context.Context, b partition.Bag[T], key func(T) K, missing func(T) bool) (partition.Bag[T], Set[K], error) {
	persisted, err := b.Persist(ctx)
	if err != nil {
		return partition.Bag[T]{}, nil, err
	}

	drop, err := partition.Fold(ctx, persisted, make(Set[K]), func(acc Set[K], _ int, part []T) (Set[K], error) {
		maps.Copy(acc, Missing(part, key, missing))
		return acc, nil
	})
	if err != nil {
		return partition.Bag[T]{}, nil, err
	}

	filtered := partition.Map(persisted, func(_ context.Context, part []T) ([]T, error) {
		return Exclude(part, key, drop), nil
	})
	out, err := filtered.Persist(ctx)
	if err != nil {
		return partition.Bag[T]{}, nil, err
	}
	return out, drop, nil
}

// FilterColumns drops every column of t holding a NaN.
func FilterColumns(t *extraction.Table) (*extraction.Table, Set[string]) {
	drop := missingColumns(t)
	return t.Drop(drop), drop
}

func missingColumns(t *extraction.Table) Set[string] {
	drop := make(Set[string])
	for _, c := range t.Columns {
		if slices.ContainsFunc(t.Values[c], math.IsNaN) {
			drop[c] = struct{}{}
		}
	}
	return drop
}

// FilterColumnsPartitioned filters partition-local tables as if they were
// one table: a column missing from a partition that has rows counts as
// missing. The kept partitions are concatenated in partition order.
func FilterColumnsPartitioned(ctx context.Context, b partition.Bag[*extraction.Table]) (*extraction.Table, Set[string], error) {
	parts, err := b.Compute(ctx)
	if err != nil {
		return nil, nil, err
	}

	var tables []*extraction.Table
	for _, p := range parts {
		tables = append(tables, p...)
	}

	all := make(Set[string])
	for _, t := range tables {
		for _, c := range t.Columns {
			all[c] = struct{}{}
		}
	}

	drop := make(Set[string])
	for _, t := range tables {
		if t.Len() == 0 {
			continue
		}
		maps.Copy(drop, missingColumns(t))
		for c := range all {
			if _, ok := t.Values[c]; !ok {
				drop[c] = struct{}{}
			}
		}
	}

	kept := make([]*extraction.Table, len(tables))
	for i, t := range tables {
		kept[i] = t.Drop(drop)
	}
	return extraction.Concat(kept), drop, nil
}
