// Package emulator is the prediction engine: it validates input parameter
// vectors, draws posterior sample curves from a surrogate, applies the
// statistic's output unit transform, and reduces the samples to a mean and
// a 90% credible band.
//
// The engine is deliberately thin. It performs no rescaling of inputs
// (parameters are supplied in the documented scaled units), never retries a
// failed prediction, and has no state beyond the surrogate handle it wraps.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cosmohub/subgridemu/pkg/artifact"
	"github.com/cosmohub/subgridemu/pkg/registry"
	"github.com/cosmohub/subgridemu/pkg/surrogate"
)

var (
	// ErrParameterCount is returned when the input vector length does not
	// match the statistic's expected parameter count. Detected before any
	// model invocation.
	ErrParameterCount = errors.New("parameter count mismatch")

	// ErrParameterType is returned when an input element is NaN or infinite.
	// Detected before any model invocation.
	ErrParameterType = errors.New("parameter not finite")

	// ErrPrediction wraps failures from the underlying surrogate sampling
	// call, e.g. a parameter vector outside the trained design region.
	// Predictions are never retried: a failure reflects an invalid query,
	// not a transient fault.
	ErrPrediction = errors.New("prediction failed")
)

// DefaultSamples is the number of posterior sample curves drawn when the
// caller does not specify one.
const DefaultSamples = 100

// Credible band quantile levels (a two-sided 90% interval).
const (
	BandLow  = 0.05
	BandHigh = 0.95
)

// Result holds one prediction: a mean curve and a credible band, all with
// length equal to the surrogate's loaded grid. Results are produced fresh
// per call and never mutated afterwards.
type Result struct {
	Statistic string    `json:"statistic"`
	Grid      []float64 `json:"grid"`
	Mean      []float64 `json:"mean"`
	Lower     []float64 `json:"lower"`
	Upper     []float64 `json:"upper"`
	Samples   int       `json:"samples"`
}

// ValidateParams checks that params is a flat vector of finite numbers with
// the expected length. It performs no rescaling: unit conventions (e.g. a
// velocity pre-divided by 10^4) are a documented caller responsibility.
func ValidateParams(params []float64, expected int) error {
	if len(params) != expected {
		return fmt.Errorf("%w: expected %d parameters, got %d", ErrParameterCount, expected, len(params))
	}
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: parameter %d is %v", ErrParameterType, i, p)
		}
	}
	return nil
}

// Emulator couples a loaded surrogate with its statistic descriptor.
// Like the surrogate it wraps, an Emulator is owned by a single logical
// caller at a time; duplicate via Load for concurrent use.
type Emulator struct {
	desc      *registry.Descriptor
	surrogate surrogate.Sampler
}

// New creates an emulator from a descriptor and a surrogate sampler.
// Exposed primarily so tests can substitute deterministic stub samplers.
func New(desc *registry.Descriptor, s surrogate.Sampler) *Emulator {
	return &Emulator{desc: desc, surrogate: s}
}

// Load fetches and decodes the named statistic's trained artifact from the
// source and wraps it in an Emulator. See artifact.Loader.Load for the
// failure modes.
func Load(ctx context.Context, source artifact.Source, name string, opts artifact.LoadOptions) (*Emulator, error) {
	desc, err := registry.Describe(name)
	if err != nil {
		return nil, err
	}

	s, err := artifact.NewLoader(source).Load(ctx, name, opts)
	if err != nil {
		return nil, err
	}

	return &Emulator{desc: desc, surrogate: s}, nil
}

// Statistic returns the emulated statistic's name.
func (e *Emulator) Statistic() string { return e.desc.Name }

// ParamCount returns the expected input parameter vector length.
func (e *Emulator) ParamCount() int { return e.desc.ParamCount }

// Grid returns the loaded independent-variable grid. This is the grid baked
// into the trained artifact, not the registry's nominal default.
func (e *Emulator) Grid() []float64 { return e.surrogate.Grid() }

// Predict draws numSamples posterior curves at params and summarizes them.
//
// The statistic's output transform is applied to every sample curve before
// the mean and quantiles are computed; applying it afterwards would bias
// the summaries for nonlinear transforms.
//
// numSamples <= 0 selects DefaultSamples.
func (e *Emulator) Predict(params []float64, numSamples int) (*Result, error) {
	if numSamples <= 0 {
		numSamples = DefaultSamples
	}

	if err := ValidateParams(params, e.desc.ParamCount); err != nil {
		return nil, err
	}

	curves, err := e.surrogate.Sample(params, numSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPrediction, e.desc.Name, err)
	}

	for _, curve := range curves {
		TransformCurve(e.desc.OutputTransform, curve)
	}

	mean, lower, upper := Summarize(curves)

	return &Result{
		Statistic: e.desc.Name,
		Grid:      append([]float64(nil), e.surrogate.Grid()...),
		Mean:      mean,
		Lower:     lower,
		Upper:     upper,
		Samples:   numSamples,
	}, nil
}
