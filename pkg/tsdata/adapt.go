package tsdata

import (
	"fmt"
	"slices"
	"time"

	"github.com/HatiCode/fdynamics/pkg/adapters"
)

// Columns names the fields of a tabular input.
type Columns struct {
	// ID is required.
	ID string
	// Kind is optional for long inputs; without it every row belongs to one
	// kind named after the value column.
	Kind string
	// Sort is optional; without it rows keep their input order.
	Sort string
	// Value defaults to "value".
	Value string
}

func (c Columns) value() string {
	if c.Value == "" {
		return "value"
	}
	return c.Value
}

// FromLong normalizes a long (stacked) DataFrame with one observation per row.
// Rows without a value are skipped; values that are present but not numeric
// are an error.
func FromLong(df *adapters.DataFrame, cols Columns) (*Frame, error) {
	if cols.ID == "" {
		return nil, fmt.Errorf("long frame: id column is required")
	}
	valueCol := cols.value()

	obs := make([]Observation, 0, len(df.Rows))
	for i, row := range df.Rows {
		raw, ok := row[valueCol]
		if !ok || raw == nil {
			continue
		}
		o, err := observation(row, i, cols.ID, cols.Sort)
		if err != nil {
			return nil, err
		}
		if o.Value, ok = ToFloat64(raw); !ok {
			return nil, fmt.Errorf("row %d: value %v (%T) is not numeric", i, raw, raw)
		}
		o.Kind = valueCol
		if cols.Kind != "" {
			k, ok := row[cols.Kind]
			if !ok {
				return nil, fmt.Errorf("row %d: missing kind column %q", i, cols.Kind)
			}
			o.Kind = fmt.Sprint(k)
		}
		obs = append(obs, o)
	}
	return NewFrame(obs)
}

// FromWide normalizes a wide DataFrame in which every column other than the
// id and sort columns is its own kind. Kinds are taken in sorted order.
func FromWide(df *adapters.DataFrame, idCol, sortCol string) (*Frame, error) {
	if idCol == "" {
		return nil, fmt.Errorf("wide frame: id column is required")
	}

	kindSet := make(map[string]bool)
	for _, row := range df.Rows {
		for k := range row {
			if k != idCol && k != sortCol {
				kindSet[k] = true
			}
		}
	}
	kinds := make([]string, 0, len(kindSet))
	for k := range kindSet {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	var obs []Observation
	for _, kind := range kinds {
		for i, row := range df.Rows {
			raw, ok := row[kind]
			if !ok || raw == nil {
				continue
			}
			o, err := observation(row, i, idCol, sortCol)
			if err != nil {
				return nil, err
			}
			if o.Value, ok = ToFloat64(raw); !ok {
				return nil, fmt.Errorf("row %d: column %q value %v is not numeric", i, kind, raw)
			}
			o.Kind = kind
			obs = append(obs, o)
		}
	}
	return NewFrame(obs)
}

// FromDict normalizes a mapping of kind to DataFrame. Kind columns inside
// the frames are ignored; the map key is the kind.
func FromDict(frames map[string]*adapters.DataFrame, cols Columns) (*Frame, error) {
	kinds := make([]string, 0, len(frames))
	for k := range frames {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	var obs []Observation
	for _, kind := range kinds {
		cols := cols
		cols.Kind = ""
		f, err := FromLong(frames[kind], cols)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", kind, err)
		}
		for _, o := range f.Observations() {
			o.Kind = kind
			obs = append(obs, o)
		}
	}
	return NewFrame(obs)
}

func observation(row adapters.Row, index int, idCol, sortCol string) (Observation, error) {
	id, ok := row[idCol]
	if !ok || id == nil {
		return Observation{}, fmt.Errorf("row %d: missing id column %q", index, idCol)
	}
	o := Observation{ID: id, Sort: float64(index)}
	if sortCol == "" {
		return o, nil
	}
	raw, ok := row[sortCol]
	if !ok {
		return Observation{}, fmt.Errorf("row %d: missing sort column %q", index, sortCol)
	}
	sort, err := sortKey(raw)
	if err != nil {
		return Observation{}, fmt.Errorf("row %d: %w", index, err)
	}
	o.Sort = sort
	return o, nil
}

// sortKey accepts numbers, time.Time values and RFC3339 strings.
// Timestamps become Unix seconds.
func sortKey(v any) (float64, error) {
	if f, ok := ToFloat64(v); ok {
		return f, nil
	}
	switch val := v.(type) {
	case time.Time:
		return float64(val.Unix()), nil
	case string:
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return 0, fmt.Errorf("invalid sort value %q: %w", val, err)
		}
		return float64(t.Unix()), nil
	default:
		return 0, fmt.Errorf("unsupported sort type: %T", v)
	}
}
