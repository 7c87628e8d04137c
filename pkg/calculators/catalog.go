package calculators

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func catalog() []Calculator {
	return []Calculator{
		{Name: "sum_values", Fn: plain(floats.Sum)},
		{Name: "mean", Fn: plain(func(x []float64) float64 { return stat.Mean(x, nil) })},
		{Name: "median", Fn: plain(func(x []float64) float64 { return quantile(x, 0.5) })},
		{Name: "minimum", Fn: plain(floats.Min)},
		{Name: "maximum", Fn: plain(floats.Max)},
		{Name: "length", Fn: length},
		{Name: "variance", Fn: plain(func(x []float64) float64 { return stat.PopVariance(x, nil) })},
		{Name: "standard_deviation", Fn: plain(func(x []float64) float64 { return stat.PopStdDev(x, nil) })},
		{Name: "abs_energy", Fn: plain(func(x []float64) float64 { return floats.Dot(x, x) })},
		{Name: "mean_change", Fn: plain(meanChange)},
		{Name: "mean_abs_change", Fn: plain(meanAbsChange)},
		{Name: "has_duplicate", Fn: hasDuplicate},
		{Name: "count_above_mean", Fn: countAboveMean},
		{Name: "count_below_mean", Fn: countBelowMean},
		{
			Name:     "autocorrelation",
			Fn:       autocorrelation,
			Defaults: []Params{{"lag": int64(1)}, {"lag": int64(2)}, {"lag": int64(3)}},
		},
		{
			Name:     "quantile",
			Fn:       quantileFn,
			Defaults: []Params{{"q": 0.1}, {"q": 0.5}, {"q": 0.9}},
		},
		{
			Name:     "large_standard_deviation",
			Fn:       largeStandardDeviation,
			Defaults: []Params{{"r": 0.05}, {"r": 0.25}},
		},
		{
			Name:     "number_crossing_m",
			Fn:       numberCrossingM,
			Defaults: []Params{{"m": int64(0)}, {"m": int64(1)}},
		},
	}
}

// plain adapts a parameterless float function. Empty input yields NaN.
func plain(fn func([]float64) float64) Func {
	return func(x []float64, _ Params) (any, error) {
		if len(x) == 0 {
			return math.NaN(), nil
		}
		return fn(x), nil
	}
}

func length(x []float64, _ Params) (any, error) {
	return len(x), nil
}

func meanChange(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return (x[len(x)-1] - x[0]) / float64(len(x)-1)
}

func meanAbsChange(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += math.Abs(x[i] - x[i-1])
	}
	return sum / float64(len(x)-1)
}

func hasDuplicate(x []float64, _ Params) (any, error) {
	seen := make(map[float64]struct{}, len(x))
	for _, v := range x {
		if _, ok := seen[v]; ok {
			return true, nil
		}
		seen[v] = struct{}{}
	}
	return false, nil
}

func countAboveMean(x []float64, _ Params) (any, error) {
	if len(x) == 0 {
		return 0, nil
	}
	m := stat.Mean(x, nil)
	n := 0
	for _, v := range x {
		if v > m {
			n++
		}
	}
	return n, nil
}

func countBelowMean(x []float64, _ Params) (any, error) {
	if len(x) == 0 {
		return 0, nil
	}
	m := stat.Mean(x, nil)
	n := 0
	for _, v := range x {
		if v < m {
			n++
		}
	}
	return n, nil
}

// autocorrelation estimates the lag-l autocorrelation normalized by the
// population variance. It is NaN for constant series and for lags not
// shorter than the series.
func autocorrelation(x []float64, p Params) (any, error) {
	lag, err := p.Int("lag")
	if err != nil {
		return nil, err
	}
	n := len(x)
	if lag < 0 || n <= lag {
		return math.NaN(), nil
	}

	mean, variance := stat.PopMeanVariance(x, nil)
	if math.Abs(variance) < 1e-12 {
		return math.NaN(), nil
	}
	var sum float64
	for i := 0; i < n-lag; i++ {
		sum += (x[i] - mean) * (x[i+lag] - mean)
	}
	return sum / (float64(n-lag) * variance), nil
}

func quantileFn(x []float64, p Params) (any, error) {
	q, err := p.Float("q")
	if err != nil {
		return nil, err
	}
	if q < 0 || q > 1 {
		return math.NaN(), nil
	}
	return quantile(x, q), nil
}

// quantile interpolates linearly between the closest ranks of the sorted
// samples, the way numpy does by default.
func quantile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	s := slices.Clone(x)
	slices.Sort(s)
	h := float64(len(s)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(s) {
		return s[len(s)-1]
	}
	return s[i] + (h-lo)*(s[i+1]-s[i])
}

func largeStandardDeviation(x []float64, p Params) (any, error) {
	r, err := p.Float("r")
	if err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return false, nil
	}
	return stat.PopStdDev(x, nil) > r*(floats.Max(x)-floats.Min(x)), nil
}

// numberCrossingM counts how often x crosses the level m.
func numberCrossingM(x []float64, p Params) (any, error) {
	m, err := p.Float("m")
	if err != nil {
		return nil, err
	}
	n := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] > m) != (x[i] > m) {
			n++
		}
	}
	return n, nil
}
