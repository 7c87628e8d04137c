package tsdata

import (
	"iter"
	"reflect"
	"slices"
)

// Frame is a resident dataset. It is immutable once built.
type Frame struct {
	series []Series
	idType reflect.Type
}

// NewFrame groups observations into series. Ids must be non-nil, comparable
// and share one dynamic type.
func NewFrame(obs []Observation) (*Frame, error) {
	idType, err := checkIDs(obs, nil)
	if err != nil {
		return nil, err
	}
	return &Frame{series: groupSeries(obs), idType: idType}, nil
}

func (f *Frame) IDType() reflect.Type { return f.idType }

func (f *Frame) Scheduling() Scheduling { return Resident }

// Series yields every series in first-seen (id, kind) order.
func (f *Frame) Series() iter.Seq[Series] {
	return slices.Values(f.series)
}

// Len returns the number of series.
func (f *Frame) Len() int {
	return len(f.series)
}

// Kinds returns the distinct kinds in first-seen order.
func (f *Frame) Kinds() []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, s := range f.series {
		if !seen[s.Kind] {
			seen[s.Kind] = true
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}

// Observations flattens the frame back into observations.
func (f *Frame) Observations() []Observation {
	var out []Observation
	for _, s := range f.series {
		for o := range s.Observations() {
			out = append(out, o)
		}
	}
	return out
}
