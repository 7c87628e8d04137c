package tsdata

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/HatiCode/fdynamics/pkg/partition"
)

// PartitionedFrame is a lazily evaluated dataset split into partitions.
//
// Series are assembled inside each partition from that partition's rows
// only. A series whose rows are spread over several partitions therefore
// shows up as several partial series; PartitionByID builds partitions for
// which that cannot happen.
type PartitionedFrame struct {
	obs    partition.Bag[Observation]
	idType reflect.Type
}

// NewPartitionedFrame wraps materialized partitions. Ids are checked eagerly.
func NewPartitionedFrame(parts [][]Observation) (*PartitionedFrame, error) {
	var idType reflect.Type
	for _, p := range parts {
		t, err := checkIDs(p, idType)
		if err != nil {
			return nil, err
		}
		if t != nil {
			idType = t
		}
	}
	return &PartitionedFrame{obs: partition.FromPartitions(parts), idType: idType}, nil
}

// NewLazyFrame wraps a bag that has not been evaluated yet. Ids are checked
// against idType when the partitions are materialized.
func NewLazyFrame(obs partition.Bag[Observation], idType reflect.Type) *PartitionedFrame {
	return &PartitionedFrame{obs: obs, idType: idType}
}

func (p *PartitionedFrame) IDType() reflect.Type { return p.idType }

func (p *PartitionedFrame) Scheduling() Scheduling { return Partitioned }

// NumPartitions returns the number of partitions.
func (p *PartitionedFrame) NumPartitions() int {
	return p.obs.NumPartitions()
}

// Observations exposes the underlying lazy rows.
func (p *PartitionedFrame) Observations() partition.Bag[Observation] {
	return p.obs
}

// SeriesBag groups each partition's rows into series, lazily.
func (p *PartitionedFrame) SeriesBag() partition.Bag[Series] {
	idType := p.idType
	return partition.Map(p.obs, func(_ context.Context, part []Observation) ([]Series, error) {
		if _, err := checkIDs(part, idType); err != nil {
			return nil, err
		}
		return groupSeries(part), nil
	})
}

// PartitionByID distributes observations over n partitions by a hash of the
// id, so every series lands in exactly one partition. Relative order of the
// observations is kept inside each partition.
func PartitionByID(obs []Observation, n int) [][]Observation {
	if n < 1 {
		n = 1
	}
	parts := make([][]Observation, n)
	for _, o := range obs {
		h := xxhash.Sum64String(fmt.Sprintf("%T:%v", o.ID, o.ID))
		i := h % uint64(n)
		parts[i] = append(parts[i], o)
	}
	return parts
}
