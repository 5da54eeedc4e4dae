// Package registry defines the static table of emulated summary statistics.
//
// Every statistic the emulator can predict is described by a Descriptor:
// its parameter count, artifact file naming, default PCA explained-variance
// threshold, output unit transform, nominal grid and presentation metadata.
// The table is built once at package init and never mutated, so lookups are
// safe for concurrent use without synchronization.
//
// Statistics are partitioned by parameter count:
//   - 5-parameter: GSMF, CGD, fGas, BHMSM, CSFR, Pk
//   - 2-parameter: CGD_2p, CGD_CC_2p, fGas_2p
package registry

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownStatistic is returned when a statistic name is not registered.
// Matching is case-sensitive and exact.
var ErrUnknownStatistic = errors.New("unknown statistic")

// Transform identifies the output unit transform applied to posterior
// sample curves before they are summarized.
type Transform string

const (
	// TransformIdentity leaves sample curves unchanged.
	TransformIdentity Transform = "identity"

	// TransformLog10 maps value -> log10(value). Used when the surrogate
	// outputs linear values but the canonical presentation unit is
	// log-scaled (GSMF).
	TransformLog10 Transform = "log10"

	// TransformPow10 maps value -> 10^value. Used when the surrogate
	// outputs log10 values but the canonical presentation unit is linear
	// (BHMSM).
	TransformPow10 Transform = "pow10"
)

// Scale is an axis scale hint for plotting.
type Scale string

const (
	ScaleLinear Scale = "linear"
	ScaleLog    Scale = "log"
)

// Range is an inclusive numeric interval.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Descriptor is the immutable per-statistic record. Descriptors are created
// once at package init from the static table below and shared by reference;
// callers must not mutate them.
type Descriptor struct {
	// Name is the unique statistic key, e.g. "GSMF" or "CGD_2p".
	Name string

	// ParamCount is the expected input parameter vector length (5 or 2).
	ParamCount int

	// DefaultExplainedVariance is the PCA explained-variance threshold the
	// loader uses when the caller does not override it. In (0, 1].
	DefaultExplainedVariance float64

	// OutputTransform is applied element-wise to every posterior sample
	// curve before summary statistics are computed.
	OutputTransform Transform

	// NominalGrid is the grid the statistic was nominally trained on. The
	// grid stored alongside a trained artifact is authoritative and may be
	// shorter when training-time masking reduced the effective grid.
	NominalGrid []float64

	// XLabel describes the independent variable, e.g. "Stellar mass [M_sun]".
	XLabel string

	Title  string
	XAxis  string
	YAxis  string
	XScale Scale
	YScale Scale

	// ValidRange is the recommended independent-variable interval where the
	// emulator is reliable, based on training data coverage.
	ValidRange Range
}

// Grid keys used for the Pk wavenumber bounds, derived from the simulation
// box size and resolution.
const (
	pkKMin = 0.04908738521234052
	pkKMax = 12.566370614359172
)

var (
	names5p = []string{"GSMF", "CGD", "fGas", "BHMSM", "CSFR", "Pk"}
	names2p = []string{"CGD_2p", "CGD_CC_2p", "fGas_2p"}

	table = buildTable()
)

func buildTable() map[string]*Descriptor {
	// Radial bins r/R_500c shared by all cluster gas density variants.
	// The first bin is dropped to match the training data.
	cgdGrid := Pow10(Linspace(-2, 0.5, 21))[1:]

	t := map[string]*Descriptor{
		"GSMF": {
			Name:                     "GSMF",
			ParamCount:               5,
			DefaultExplainedVariance: 0.95,
			OutputTransform:          TransformLog10,
			NominalGrid:              Logspace(9, 12, 39),
			XLabel:                   "Stellar mass [M_sun]",
			Title:                    "Galaxy stellar mass function",
			XAxis:                    "M_stars / M_sun",
			YAxis:                    "dn / dlog10(M_stars) [1/(Mpc/h)^3]",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: 5e9, High: 3e11},
		},
		"CGD": {
			Name:                     "CGD",
			ParamCount:               5,
			DefaultExplainedVariance: 0.95,
			OutputTransform:          TransformIdentity,
			NominalGrid:              cgdGrid,
			XLabel:                   "Radius r/R_500c",
			Title:                    "Cluster gas density",
			XAxis:                    "r / R_500c",
			YAxis:                    "rho_gas / rho_crit",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: 0.015, High: 2.75},
		},
		"fGas": {
			Name:                     "fGas",
			ParamCount:               5,
			DefaultExplainedVariance: 0.95,
			OutputTransform:          TransformIdentity,
			NominalGrid:              Logspace(13.5, 14.5, 40),
			XLabel:                   "Halo mass M_500c [M_sun]",
			Title:                    "Cluster gas fraction",
			XAxis:                    "M_500c / (M_sun/h)",
			YAxis:                    "M_gas / M_500c [<R_500c]",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: math.Pow(10, 13.5), High: math.Pow(10, 14.3)},
		},
		"BHMSM": {
			Name:                     "BHMSM",
			ParamCount:               5,
			DefaultExplainedVariance: 0.95,
			OutputTransform:          TransformPow10,
			NominalGrid:              Logspace(10, 12.5, 20),
			XLabel:                   "Stellar mass [M_sun]",
			Title:                    "Black hole mass-stellar mass",
			XAxis:                    "M_star [M_sun]",
			YAxis:                    "M_BH [M_sun]",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: 1e10, High: 2e12},
		},
		"CSFR": {
			Name:                     "CSFR",
			ParamCount:               5,
			DefaultExplainedVariance: 0.95,
			OutputTransform:          TransformIdentity,
			NominalGrid:              Linspace(0.1, 1.0, 655),
			XLabel:                   "Scale factor a",
			Title:                    "Cosmic star formation rate",
			XAxis:                    "a",
			YAxis:                    "CSFR [M_sun/yr/(Mpc/h)^3]",
			XScale:                   ScaleLinear,
			YScale:                   ScaleLinear,
			ValidRange:               Range{Low: 0.0, High: 1.0},
		},
		"Pk": {
			Name:                     "Pk",
			ParamCount:               5,
			DefaultExplainedVariance: 0.95,
			OutputTransform:          TransformIdentity,
			NominalGrid:              LogspaceBetween(pkKMin, pkKMax, 443),
			XLabel:                   "Wavenumber k [h/Mpc]",
			Title:                    "Total power spectra ratio",
			XAxis:                    "k [h/Mpc]",
			YAxis:                    "P_sub(k) / P_grav(k)",
			XScale:                   ScaleLog,
			YScale:                   ScaleLinear,
			ValidRange:               Range{Low: pkKMin, High: pkKMax},
		},
		"CGD_2p": {
			Name:                     "CGD_2p",
			ParamCount:               2,
			DefaultExplainedVariance: 0.99,
			OutputTransform:          TransformIdentity,
			NominalGrid:              cgdGrid,
			XLabel:                   "Radius r/R_500c",
			Title:                    "Cluster gas density",
			XAxis:                    "r / R_500c",
			YAxis:                    "rho_gas / rho_crit",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: 0.015, High: 2.75},
		},
		"CGD_CC_2p": {
			Name:                     "CGD_CC_2p",
			ParamCount:               2,
			DefaultExplainedVariance: 0.99,
			OutputTransform:          TransformIdentity,
			NominalGrid:              cgdGrid,
			XLabel:                   "Radius r/R_500c",
			Title:                    "Cluster gas density (Cool Core)",
			XAxis:                    "r / R_500c",
			YAxis:                    "rho_gas / rho_crit",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: 0.015, High: 2.75},
		},
		"fGas_2p": {
			Name:                     "fGas_2p",
			ParamCount:               2,
			DefaultExplainedVariance: 0.99,
			OutputTransform:          TransformIdentity,
			NominalGrid:              Logspace(13.5, 14.5, 40),
			XLabel:                   "Halo mass M_500c [M_sun]",
			Title:                    "Cluster gas fraction",
			XAxis:                    "M_500c / (M_sun/h)",
			YAxis:                    "M_gas / M_500c [<R_500c]",
			XScale:                   ScaleLog,
			YScale:                   ScaleLog,
			ValidRange:               Range{Low: math.Pow(10, 13.5), High: math.Pow(10, 14.3)},
		},
	}

	return t
}

// Describe returns the descriptor for the named statistic.
// Returns ErrUnknownStatistic if the name is not registered.
func Describe(name string) (*Descriptor, error) {
	d, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStatistic, name, Names())
	}
	return d, nil
}

// List returns the registered statistic names partitioned by parameter
// count, keyed "5-parameter" and "2-parameter". The returned slices are
// copies; callers may modify them freely.
func List() map[string][]string {
	return map[string][]string{
		"5-parameter": append([]string(nil), names5p...),
		"2-parameter": append([]string(nil), names2p...),
	}
}

// Names returns all registered statistic names, 5-parameter first, in
// registration order.
func Names() []string {
	out := make([]string, 0, len(names5p)+len(names2p))
	out = append(out, names5p...)
	out = append(out, names2p...)
	return out
}

// ArtifactFile returns the artifact file name for a statistic and redshift
// index, e.g. "GSMF_multivariate_model_z_index0.json".
func ArtifactFile(name string, zIndex int) string {
	return fmt.Sprintf("%s_multivariate_model_z_index%d.json", name, zIndex)
}

// GridFile returns the companion grid file name for a statistic and redshift
// index, e.g. "GSMF_z_index0_grid.json". The grid stored in this file is
// authoritative for the statistic's output length.
func GridFile(name string, zIndex int) string {
	return fmt.Sprintf("%s_z_index%d_grid.json", name, zIndex)
}
