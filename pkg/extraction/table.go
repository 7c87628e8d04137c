package extraction

import (
	"maps"
	"math"
	"slices"

	"github.com/HatiCode/fdynamics/pkg/tsdata"
)

// Table is a wide feature table. Values holds one slice per column, aligned
// with IDs. Missing cells are NaN.
type Table struct {
	IDs     []any                `json:"ids"`
	Columns []string             `json:"columns"`
	Values  map[string][]float64 `json:"values"`
}

// NewTable returns an empty table with the given ids.
func NewTable(ids []any) *Table {
	return &Table{IDs: ids, Values: make(map[string][]float64)}
}

// Pivot turns long rows into a table. Ids keep their order of first
// appearance and columns are sorted. Values that are not numeric become NaN.
func Pivot(rows []Row) *Table {
	index := make(map[any]int)
	var ids []any
	for _, r := range rows {
		if _, ok := index[r.ID]; !ok {
			index[r.ID] = len(ids)
			ids = append(ids, r.ID)
		}
	}

	t := NewTable(ids)
	for _, r := range rows {
		col, ok := t.Values[r.Feature]
		if !ok {
			col = nanColumn(len(ids))
			t.Values[r.Feature] = col
		}
		v, ok := tsdata.ToFloat64(r.Value)
		if !ok {
			v = math.NaN()
		}
		col[index[r.ID]] = v
	}
	t.Columns = slices.Sorted(maps.Keys(t.Values))
	return t
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.IDs)
}

// Column returns the values of name.
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.Values[name]
	return col, ok
}

// Value returns the cell at (id, column).
func (t *Table) Value(id any, column string) (float64, bool) {
	col, ok := t.Values[column]
	if !ok {
		return 0, false
	}
	i := slices.Index(t.IDs, id)
	if i < 0 {
		return 0, false
	}
	return col[i], true
}

// Drop returns a table without the named columns. Column slices are shared.
func (t *Table) Drop(columns map[string]struct{}) *Table {
	out := NewTable(t.IDs)
	for _, c := range t.Columns {
		if _, ok := columns[c]; ok {
			continue
		}
		out.Columns = append(out.Columns, c)
		out.Values[c] = t.Values[c]
	}
	return out
}

// Concat stacks tables vertically. Columns are the union of the inputs'
// columns; a column missing from one input is NaN for its rows.
func Concat(tables []*Table) *Table {
	cols := make(map[string]struct{})
	var ids []any
	for _, t := range tables {
		ids = append(ids, t.IDs...)
		for _, c := range t.Columns {
			cols[c] = struct{}{}
		}
	}

	out := NewTable(ids)
	out.Columns = slices.Sorted(maps.Keys(cols))
	for _, c := range out.Columns {
		col := make([]float64, 0, len(ids))
		for _, t := range tables {
			if v, ok := t.Values[c]; ok {
				col = append(col, v...)
			} else {
				col = append(col, nanColumn(t.Len())...)
			}
		}
		out.Values[c] = col
	}
	return out
}

// JoinOuter joins tables side by side on id. Ids keep their order of first
// appearance across the inputs; a later table's column replaces an earlier
// one of the same name.
func JoinOuter(tables []*Table) *Table {
	index := make(map[any]int)
	var ids []any
	for _, t := range tables {
		for _, id := range t.IDs {
			if _, ok := index[id]; !ok {
				index[id] = len(ids)
				ids = append(ids, id)
			}
		}
	}

	out := NewTable(ids)
	for _, t := range tables {
		for _, c := range t.Columns {
			col := nanColumn(len(ids))
			for i, id := range t.IDs {
				col[index[id]] = t.Values[c][i]
			}
			out.Values[c] = col
		}
	}
	out.Columns = slices.Sorted(maps.Keys(out.Values))
	return out
}
