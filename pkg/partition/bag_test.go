package partition

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMap_IsLazy(t *testing.T) {
	var calls atomic.Int32
	bag := Map(FromPartitions([][]int{{1, 2}, {3}}), func(_ context.Context, part []int) ([]int, error) {
		calls.Add(1)
		return part, nil
	})

	if got := calls.Load(); got != 0 {
		t.Fatalf("calls before Compute = %d, want 0", got)
	}
	if bag.NumPartitions() != 2 {
		t.Errorf("NumPartitions() = %d, want 2", bag.NumPartitions())
	}

	if _, err := bag.Compute(context.Background()); err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls after Compute = %d, want 2", got)
	}
}

func TestCompute_PreservesPartitionOrder(t *testing.T) {
	bag := Map(FromPartitions([][]int{{1, 2}, {3}, {}, {4, 5, 6}}), func(_ context.Context, part []int) ([]string, error) {
		out := make([]string, len(part))
		for i, v := range part {
			out[i] = strconv.Itoa(v * 10)
		}
		return out, nil
	}).WithConcurrency(2)

	got, err := bag.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	want := [][]string{{"10", "20"}, {"30"}, {}, {"40", "50", "60"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}

	flat, err := bag.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if diff := cmp.Diff([]string{"10", "20", "30", "40", "50", "60"}, flat); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_PartitionErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	bag := Map(FromPartitions([][]int{{1}, {2}, {3}}), func(_ context.Context, part []int) ([]int, error) {
		if part[0] == 2 {
			return nil, boom
		}
		return part, nil
	})

	_, err := bag.Compute(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Compute() error = %v, want %v", err, boom)
	}
}

func TestCompute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FromPartitions([][]int{{1}}).Compute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Compute() error = %v, want context.Canceled", err)
	}
}

func TestPersist_EvaluatesOnce(t *testing.T) {
	var calls atomic.Int32
	bag := Map(FromPartitions([][]int{{1}, {2}}), func(_ context.Context, part []int) ([]int, error) {
		calls.Add(1)
		return part, nil
	}).WithConcurrency(1)

	persisted, err := bag.Persist(context.Background())
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if persisted.Concurrency() != 1 {
		t.Errorf("Concurrency() = %d, want 1", persisted.Concurrency())
	}
	for range 3 {
		if _, err := persisted.Compute(context.Background()); err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestFold(t *testing.T) {
	bag := FromPartitions([][]int{{1, 2}, {3}, {4}})

	sum, err := Fold(context.Background(), bag, 0, func(acc, _ int, part []int) (int, error) {
		for _, v := range part {
			acc += v
		}
		return acc, nil
	})
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if sum != 10 {
		t.Errorf("Fold() = %d, want 10", sum)
	}

	stop := errors.New("stop")
	_, err = Fold(context.Background(), bag, 0, func(acc, index int, _ []int) (int, error) {
		if index == 1 {
			return acc, stop
		}
		return acc, nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Fold() error = %v, want %v", err, stop)
	}
}

func TestZeroBag(t *testing.T) {
	var bag Bag[int]
	got, err := bag.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(Collect()) = %d, want 0", len(got))
	}
}
