package emulator

import (
	"math"

	"github.com/cosmohub/subgridemu/pkg/registry"
)

// TransformCurve applies an output unit transform to a sample curve in
// place. Transforms convert between a surrogate's native output scale and
// the statistic's canonical presentation unit:
//
//   - registry.TransformIdentity: no change
//   - registry.TransformLog10:    value -> log10(value)
//   - registry.TransformPow10:    value -> 10^value
//
// Log10 and pow10 are inverses, so round-tripping a positive curve returns
// it within floating-point tolerance.
func TransformCurve(t registry.Transform, curve []float64) {
	switch t {
	case registry.TransformLog10:
		for i, v := range curve {
			curve[i] = math.Log10(v)
		}
	case registry.TransformPow10:
		for i, v := range curve {
			curve[i] = math.Pow(10, v)
		}
	}
}
