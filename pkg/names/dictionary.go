package names

import (
	"fmt"
	"maps"
	"slices"

	"github.com/HatiCode/fdynamics/pkg/calculators"
)

// Dictionary maps a window length to the calculator settings, per column,
// needed to reproduce a set of features.
type Dictionary map[int]calculators.KindToFCParameters

// Windows returns the window lengths in increasing order.
func (d Dictionary) Windows() []int {
	return slices.Sorted(maps.Keys(d))
}

// add records one decoded feature: parts holds the column, the calculator
// name and the encoded parameters. Parameter sets are kept once per
// calculator, in first-seen order.
func (d Dictionary) add(window int, parts []string, reg *calculators.Registry) error {
	column, calc := parts[0], parts[1]
	if !reg.Has(calc) {
		return fmt.Errorf("%w: %q", calculators.ErrUnknownCalculator, calc)
	}
	params, err := calculators.ParseParams(parts[2:])
	if err != nil {
		return err
	}

	kinds, ok := d[window]
	if !ok {
		kinds = make(calculators.KindToFCParameters)
		d[window] = kinds
	}
	fcs, ok := kinds[column]
	if !ok {
		fcs = make(calculators.FCParameters)
		kinds[column] = fcs
	}
	d.insert(fcs, calc, params)
	return nil
}

func (d Dictionary) insert(fcs calculators.FCParameters, calc string, params calculators.Params) {
	list, seen := fcs[calc]
	if params == nil {
		if !seen {
			fcs[calc] = nil
		}
		return
	}
	for _, p := range list {
		if p.Equal(params) {
			return
		}
	}
	fcs[calc] = append(list, params)
}

// Merge returns a new dictionary holding the settings of d and o. Parameter
// sets of d come first.
func (d Dictionary) Merge(o Dictionary) Dictionary {
	out := make(Dictionary, len(d)+len(o))
	for _, src := range []Dictionary{d, o} {
		for window, kinds := range src {
			dst, ok := out[window]
			if !ok {
				dst = make(calculators.KindToFCParameters)
				out[window] = dst
			}
			for column, fcs := range kinds {
				target, ok := dst[column]
				if !ok {
					target = make(calculators.FCParameters)
					dst[column] = target
				}
				for _, calc := range fcs.Names() {
					if fcs[calc] == nil {
						out.insert(target, calc, nil)
						continue
					}
					for _, p := range fcs[calc] {
						out.insert(target, calc, p.Clone())
					}
				}
			}
		}
	}
	return out
}

// BuildDictionaries derives the settings that reproduce the given final
// feature names: fts holds the stage-one settings keyed by input kind, fd
// the stage-two settings keyed by feature time series column. Both are
// keyed by window length.
func BuildDictionaries(featureNames []string, reg *calculators.Registry) (fts, fd Dictionary, err error) {
	fts, fd = make(Dictionary), make(Dictionary)
	for _, name := range featureNames {
		f, err := DecodeFTS(name)
		if err != nil {
			return nil, nil, err
		}
		if err := fts.add(f.WindowLength, f.Parts, reg); err != nil {
			return nil, nil, fmt.Errorf("feature %q: %w", name, err)
		}

		parts, err := DecodeFD(name)
		if err != nil {
			return nil, nil, err
		}
		if err := fd.add(f.WindowLength, parts, reg); err != nil {
			return nil, nil, fmt.Errorf("feature %q: %w", name, err)
		}
	}
	return fts, fd, nil
}
