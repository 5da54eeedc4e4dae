package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sample draws n posterior predictive curves at the given parameter point.
//
// For each curve a posterior draw is chosen at random; the retained
// per-component GPs are conditioned on the training design under that draw
// and a predictive weight is sampled for each component. The weight vector
// is expanded through the PCA basis, de-standardized, and perturbed with the
// draw's residual noise. Every returned curve has length len(Grid()).
//
// Sample mutates the surrogate's internal random source and must not be
// called concurrently on one Surrogate.
func (s *Surrogate) Sample(params []float64, n int) ([][]float64, error) {
	if len(params) != s.paramCount {
		return nil, fmt.Errorf("expected %d parameters, got %d", s.paramCount, len(params))
	}
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}

	nSim, _ := s.design.Dims()
	m := len(s.grid)

	kv := mat.NewVecDense(nSim, nil)
	solved := mat.NewVecDense(nSim, nil)
	weights := mat.NewVecDense(s.nKept, nil)
	expanded := mat.NewVecDense(m, nil)

	curves := make([][]float64, n)
	for c := 0; c < n; c++ {
		st := s.draws[s.rng.Intn(len(s.draws))]

		for i, comp := range st.comps {
			for j := 0; j < nSim; j++ {
				kv.SetVec(j, covKernel(params, s.design.RawRowView(j), comp.betaU, comp.lamUz))
			}

			mean := mat.Dot(kv, comp.alpha)

			if err := comp.chol.SolveVecTo(solved, kv); err != nil {
				return nil, fmt.Errorf("component %d: predictive solve: %w", i, err)
			}
			variance := 1.0/comp.lamUz + 1.0/comp.lamWs - mat.Dot(kv, solved)
			if variance < 0 {
				// Numerical round-off near the design points.
				variance = 0
			}

			weights.SetVec(i, mean+math.Sqrt(variance)*s.rng.NormFloat64())
		}

		expanded.MulVec(s.basis.T(), weights)

		curve := make([]float64, m)
		for j := 0; j < m; j++ {
			curve[j] = s.yMean[j] + s.ySD*(expanded.AtVec(j)+st.noiseSD*s.rng.NormFloat64())
		}
		curves[c] = curve
	}

	return curves, nil
}
