// Package partition provides a lazily evaluated, partitioned collection.
//
// A Bag describes how to produce each of its partitions without producing
// them. Map stacks partition-local transforms on top of a Bag; nothing runs
// until Compute, Collect, Persist or Fold is called. Those calls block,
// evaluate every partition concurrently, and abort on the first partition
// error. Partitions never communicate with each other inside a Map; the only
// place data from several partitions meets is the caller of Compute or the
// accumulator of Fold.
package partition

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type source[T any] func(ctx context.Context) ([]T, error)

// Bag is a lazily evaluated collection split into independent partitions.
// The zero value is an empty bag.
type Bag[T any] struct {
	parts       []source[T]
	concurrency int
}

// FromPartitions returns a Bag whose partitions are the given slices.
// The slices are not copied.
func FromPartitions[T any](parts [][]T) Bag[T] {
	srcs := make([]source[T], len(parts))
	for i, p := range parts {
		srcs[i] = func(context.Context) ([]T, error) { return p, nil }
	}
	return Bag[T]{parts: srcs}
}

// NumPartitions reports the number of partitions.
func (b Bag[T]) NumPartitions() int {
	return len(b.parts)
}

// WithConcurrency bounds how many partitions are evaluated at once.
// n <= 0 means no bound.
func (b Bag[T]) WithConcurrency(n int) Bag[T] {
	b.concurrency = n
	return b
}

// Concurrency returns the configured bound, 0 when unbounded.
func (b Bag[T]) Concurrency() int {
	return b.concurrency
}

// Map applies fn to every partition independently. It is lazy: fn runs only
// when the resulting Bag is materialized.
func Map[T, U any](b Bag[T], fn func(ctx context.Context, part []T) ([]U, error)) Bag[U] {
	out := make([]source[U], len(b.parts))
	for i, src := range b.parts {
		out[i] = func(ctx context.Context) ([]U, error) {
			in, err := src(ctx)
			if err != nil {
				return nil, err
			}
			return fn(ctx, in)
		}
	}
	return Bag[U]{parts: out, concurrency: b.concurrency}
}

// Compute materializes every partition. Results are returned in partition
// order. The first failing partition cancels the others.
func (b Bag[T]) Compute(ctx context.Context) ([][]T, error) {
	results := make([][]T, len(b.parts))

	g, gctx := errgroup.WithContext(ctx)
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}
	for i, src := range b.parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, err := src(gctx)
			if err != nil {
				return fmt.Errorf("partition %d: %w", i, err)
			}
			results[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Collect materializes the bag and concatenates its partitions in order.
func (b Bag[T]) Collect(ctx context.Context) ([]T, error) {
	parts, err := b.Compute(ctx)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// Persist materializes the bag once and returns a Bag backed by the results,
// so later transforms do not re-evaluate the upstream chain.
func (b Bag[T]) Persist(ctx context.Context) (Bag[T], error) {
	parts, err := b.Compute(ctx)
	if err != nil {
		return Bag[T]{}, err
	}
	return FromPartitions(parts).WithConcurrency(b.concurrency), nil
}

// Fold materializes the bag and folds the partitions into acc in partition
// order. It is the synchronization point for reductions across partitions.
func Fold[T, A any](ctx context.Context, b Bag[T], acc A, fn func(acc A, index int, part []T) (A, error)) (A, error) {
	parts, err := b.Compute(ctx)
	if err != nil {
		return acc, err
	}
	for i, p := range parts {
		if acc, err = fn(acc, i, p); err != nil {
			return acc, err
		}
	}
	return acc, nil
}
