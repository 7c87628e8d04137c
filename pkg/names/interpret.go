package names

import (
	"fmt"

	"github.com/HatiCode/fdynamics/pkg/calculators"
)

// Interpretation breaks a feature dynamics name into the pieces a reader
// needs to understand it.
type Interpretation struct {
	Name            string
	InputTimeseries string
	FTSCalculator   string
	FTSParams       calculators.Params
	WindowLength    int
	FDCalculator    string
	FDParams        calculators.Params
}

// Interpret decodes name and resolves both calculators against reg.
func Interpret(name string, reg *calculators.Registry) (Interpretation, error) {
	n, err := Parse(name)
	if err != nil {
		return Interpretation{}, err
	}

	out := Interpretation{
		Name:            name,
		InputTimeseries: n.Kind,
		FTSCalculator:   n.FTSName,
		WindowLength:    n.WindowLength,
		FDCalculator:    n.FDName,
	}
	for _, calc := range []string{n.FTSName, n.FDName} {
		if !reg.Has(calc) {
			return Interpretation{}, fmt.Errorf("feature %q: %w: %q", name, calculators.ErrUnknownCalculator, calc)
		}
	}
	if out.FTSParams, err = calculators.ParseParams(n.FTSParams); err != nil {
		return Interpretation{}, fmt.Errorf("feature %q: %w", name, err)
	}
	if out.FDParams, err = calculators.ParseParams(n.FDParams); err != nil {
		return Interpretation{}, fmt.Errorf("feature %q: %w", name, err)
	}
	return out, nil
}
