package emulator

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summarize reduces a set of sample curves to element-wise summaries: the
// arithmetic mean and the 5th/95th percentiles (lower bound first).
// Quantiles use linear interpolation between order statistics.
//
// All curves must have equal length; the returned slices share it.
func Summarize(curves [][]float64) (mean, lower, upper []float64) {
	if len(curves) == 0 {
		return nil, nil, nil
	}

	m := len(curves[0])
	mean = make([]float64, m)
	lower = make([]float64, m)
	upper = make([]float64, m)

	column := make([]float64, len(curves))
	for j := 0; j < m; j++ {
		sum := 0.0
		for i, curve := range curves {
			column[i] = curve[j]
			sum += curve[j]
		}
		mean[j] = sum / float64(len(curves))

		sort.Float64s(column)
		lower[j] = stat.Quantile(BandLow, stat.LinInterp, column, nil)
		upper[j] = stat.Quantile(BandHigh, stat.LinInterp, column, nil)
	}

	return mean, lower, upper
}
