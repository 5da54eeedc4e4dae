// Package surrogate implements deserialization and posterior sampling for
// trained Gaussian-process emulator artifacts.
//
// A trained artifact stores everything needed to reproduce the emulator's
// predictive distribution: the output standardization, the PCA basis used to
// compress the simulation outputs, the scaled training design, and a chain
// of posterior draws of the GP hyperparameters and component weights. The
// Surrogate type replays that posterior: each call to Sample conditions the
// per-component GPs on the training design for a randomly chosen draw and
// samples predictive curves at the requested parameter point.
//
// The rest of the module treats this package as an opaque collaborator
// through the Sampler interface, so prediction logic can be tested against
// deterministic stub curves.
package surrogate

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Sampler is the narrow interface the prediction engine consumes. A real
// GP-backed implementation is produced by Decode; tests substitute stubs.
type Sampler interface {
	// Sample draws n posterior predictive curves at the given parameter
	// point. Every returned curve has length len(Grid()).
	Sample(params []float64, n int) ([][]float64, error)

	// Grid returns the independent-variable grid baked into the trained
	// artifact. This is authoritative for output length.
	Grid() []float64

	// ParamCount returns the input dimensionality the artifact was
	// trained with.
	ParamCount() int
}

// Options controls artifact decoding.
type Options struct {
	// ExplainedVariance selects how many principal components to retain:
	// components are kept, in order, until their cumulative explained
	// variance reaches this threshold. Must be in (0, 1]; 0 means "use the
	// artifact's full basis".
	ExplainedVariance float64

	// Seed seeds the sampler's random source. 0 seeds from the clock; the
	// emulator core imposes no seeding of its own.
	Seed int64
}

// posteriorDraw is one MCMC draw of the GP hyperparameters and component
// weights, as persisted in the artifact.
type posteriorDraw struct {
	// BetaU holds per-component kernel inverse-lengthscales, one row per
	// principal component, one column per input parameter.
	BetaU [][]float64 `json:"betaU"`

	// LamUz is the per-component GP marginal precision.
	LamUz []float64 `json:"lamUz"`

	// LamWs is the per-component simulation weight precision (nugget).
	LamWs []float64 `json:"lamWs"`

	// LamWOs is the observation noise precision on the standardized scale.
	LamWOs float64 `json:"lamWOs"`

	// W holds the component weights at the training design, one row per
	// principal component, one column per simulation.
	W [][]float64 `json:"w"`
}

// document is the on-disk artifact schema (JSON).
type document struct {
	Schema            int             `json:"schema"`
	Statistic         string          `json:"statistic"`
	ZIndex            int             `json:"zIndex"`
	ParamCount        int             `json:"paramCount"`
	YMean             []float64       `json:"yMean"`
	YSD               float64         `json:"ySD"`
	Basis             [][]float64     `json:"basis"`
	ExplainedVariance []float64       `json:"explainedVariance"`
	Design            [][]float64     `json:"design"`
	Draws             []posteriorDraw `json:"draws"`
}

// componentGP holds the precomputed conditioning state for one principal
// component under one posterior draw: the Cholesky factor of the design
// covariance and the solved weight vector.
type componentGP struct {
	betaU []float64
	lamUz float64
	lamWs float64
	chol  *mat.Cholesky
	alpha *mat.VecDense // K_sim^{-1} w
}

// drawState is a posterior draw prepared for prediction.
type drawState struct {
	comps   []componentGP
	noiseSD float64 // residual sd on the standardized scale
}

// Surrogate is a deserialized GP emulator ready to produce posterior
// predictive samples. A Surrogate is owned by a single logical caller: its
// internal random source is not safe for concurrent Sample calls. Callers
// wanting parallelism should decode one Surrogate per worker.
type Surrogate struct {
	statistic  string
	zIndex     int
	paramCount int
	grid       []float64
	yMean      []float64
	ySD        float64
	basis      *mat.Dense // kept components x grid points
	nKept      int
	design     *mat.Dense // simulations x parameters
	draws      []drawState
	rng        *rand.Rand
}

// Decode parses an artifact document and its companion grid file and
// prepares the surrogate for sampling. The grid file is authoritative for
// output length; Decode fails if the artifact's internal dimensions do not
// agree with it.
func Decode(artifactJSON, gridJSON []byte, opts Options) (*Surrogate, error) {
	var doc document
	if err := json.Unmarshal(artifactJSON, &doc); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	var grid []float64
	if err := json.Unmarshal(gridJSON, &grid); err != nil {
		return nil, fmt.Errorf("parse grid file: %w", err)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("grid file is empty")
	}

	if err := validate(&doc, grid); err != nil {
		return nil, err
	}

	nKept := keepComponents(doc.ExplainedVariance, opts.ExplainedVariance)

	m := len(grid)
	basis := mat.NewDense(nKept, m, nil)
	for i := 0; i < nKept; i++ {
		basis.SetRow(i, doc.Basis[i])
	}

	nSim := len(doc.Design)
	design := mat.NewDense(nSim, doc.ParamCount, nil)
	for i, row := range doc.Design {
		design.SetRow(i, row)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Surrogate{
		statistic:  doc.Statistic,
		zIndex:     doc.ZIndex,
		paramCount: doc.ParamCount,
		grid:       grid,
		yMean:      doc.YMean,
		ySD:        doc.YSD,
		basis:      basis,
		nKept:      nKept,
		design:     design,
		rng:        rand.New(rand.NewSource(seed)),
	}

	s.draws = make([]drawState, len(doc.Draws))
	for d, draw := range doc.Draws {
		st, err := prepareDraw(draw, design, nKept)
		if err != nil {
			return nil, fmt.Errorf("prepare posterior draw %d: %w", d, err)
		}
		s.draws[d] = st
	}

	return s, nil
}

// validate checks the artifact's internal consistency against the companion
// grid. A violation here means the artifact and its companion files were not
// produced by the same training run (the historical grid-masking defect), so
// the loader surfaces it as corruption rather than letting a shape error
// escape downstream.
func validate(doc *document, grid []float64) error {
	m := len(grid)

	if doc.Statistic == "" {
		return fmt.Errorf("artifact missing statistic name")
	}
	if doc.ParamCount <= 0 {
		return fmt.Errorf("artifact %s: invalid paramCount %d", doc.Statistic, doc.ParamCount)
	}
	if len(doc.YMean) != m {
		return fmt.Errorf("artifact %s: standardization length %d != grid length %d",
			doc.Statistic, len(doc.YMean), m)
	}
	if doc.YSD <= 0 {
		return fmt.Errorf("artifact %s: non-positive output sd %v", doc.Statistic, doc.YSD)
	}
	if len(doc.Basis) == 0 {
		return fmt.Errorf("artifact %s: empty PCA basis", doc.Statistic)
	}
	for i, row := range doc.Basis {
		if len(row) != m {
			return fmt.Errorf("artifact %s: basis row %d length %d != grid length %d",
				doc.Statistic, i, len(row), m)
		}
	}
	if len(doc.ExplainedVariance) != len(doc.Basis) {
		return fmt.Errorf("artifact %s: %d explained-variance entries for %d components",
			doc.Statistic, len(doc.ExplainedVariance), len(doc.Basis))
	}
	if len(doc.Design) == 0 {
		return fmt.Errorf("artifact %s: empty training design", doc.Statistic)
	}
	for i, row := range doc.Design {
		if len(row) != doc.ParamCount {
			return fmt.Errorf("artifact %s: design row %d has %d parameters, want %d",
				doc.Statistic, i, len(row), doc.ParamCount)
		}
	}
	if len(doc.Draws) == 0 {
		return fmt.Errorf("artifact %s: no posterior draws", doc.Statistic)
	}

	nComp := len(doc.Basis)
	nSim := len(doc.Design)
	for d, draw := range doc.Draws {
		if len(draw.BetaU) != nComp || len(draw.LamUz) != nComp ||
			len(draw.LamWs) != nComp || len(draw.W) != nComp {
			return fmt.Errorf("artifact %s: draw %d does not cover all %d components",
				doc.Statistic, d, nComp)
		}
		if draw.LamWOs <= 0 {
			return fmt.Errorf("artifact %s: draw %d has non-positive lamWOs", doc.Statistic, d)
		}
		for i := 0; i < nComp; i++ {
			if len(draw.BetaU[i]) != doc.ParamCount {
				return fmt.Errorf("artifact %s: draw %d component %d betaU length %d, want %d",
					doc.Statistic, d, i, len(draw.BetaU[i]), doc.ParamCount)
			}
			if len(draw.W[i]) != nSim {
				return fmt.Errorf("artifact %s: draw %d component %d has %d weights, want %d",
					doc.Statistic, d, i, len(draw.W[i]), nSim)
			}
			if draw.LamUz[i] <= 0 || draw.LamWs[i] <= 0 {
				return fmt.Errorf("artifact %s: draw %d component %d has non-positive precision",
					doc.Statistic, d, i)
			}
		}
	}

	return nil
}

// keepComponents returns how many leading components to retain so that
// cumulative explained variance reaches the threshold. At least one
// component is always kept; threshold 0 keeps the full basis.
func keepComponents(explained []float64, threshold float64) int {
	if threshold <= 0 || threshold > 1 {
		return len(explained)
	}
	cum := 0.0
	for i, v := range explained {
		cum += v
		if cum >= threshold {
			return i + 1
		}
	}
	return len(explained)
}

// prepareDraw factors the design covariance for each retained component and
// pre-solves against the component weights, so Sample only needs one
// triangular solve per prediction point.
func prepareDraw(draw posteriorDraw, design *mat.Dense, nKept int) (drawState, error) {
	nSim, _ := design.Dims()

	st := drawState{
		comps:   make([]componentGP, nKept),
		noiseSD: 1.0 / math.Sqrt(draw.LamWOs),
	}

	for i := 0; i < nKept; i++ {
		cov := mat.NewSymDense(nSim, nil)
		for a := 0; a < nSim; a++ {
			for b := a; b < nSim; b++ {
				k := covKernel(design.RawRowView(a), design.RawRowView(b), draw.BetaU[i], draw.LamUz[i])
				if a == b {
					k += 1.0 / draw.LamWs[i]
				}
				cov.SetSym(a, b, k)
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(cov); !ok {
			return drawState{}, fmt.Errorf("component %d: design covariance is not positive definite", i)
		}

		w := mat.NewVecDense(nSim, append([]float64(nil), draw.W[i]...))
		alpha := mat.NewVecDense(nSim, nil)
		if err := chol.SolveVecTo(alpha, w); err != nil {
			return drawState{}, fmt.Errorf("component %d: solve weights: %w", i, err)
		}

		st.comps[i] = componentGP{
			betaU: draw.BetaU[i],
			lamUz: draw.LamUz[i],
			lamWs: draw.LamWs[i],
			chol:  &chol,
			alpha: alpha,
		}
	}

	return st, nil
}

// covKernel is the squared-exponential covariance between two scaled design
// points for one principal component.
func covKernel(a, b, betaU []float64, lamUz float64) float64 {
	s := 0.0
	for d := range a {
		diff := a[d] - b[d]
		s += betaU[d] * diff * diff
	}
	return math.Exp(-s) / lamUz
}

// Grid returns the authoritative independent-variable grid.
func (s *Surrogate) Grid() []float64 { return s.grid }

// ParamCount returns the trained input dimensionality.
func (s *Surrogate) ParamCount() int { return s.paramCount }

// Statistic returns the statistic name stored in the artifact.
func (s *Surrogate) Statistic() string { return s.statistic }

// ZIndex returns the redshift index stored in the artifact.
func (s *Surrogate) ZIndex() int { return s.zIndex }

// Components returns how many principal components are retained for
// prediction after applying the explained-variance threshold.
func (s *Surrogate) Components() int { return s.nKept }
