package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/cosmohub/subgridemu/pkg/registry"
	"github.com/cosmohub/subgridemu/pkg/surrogate"
)

// LoadOptions controls a single artifact load.
type LoadOptions struct {
	// ZIndex selects which cosmological epoch's trained artifact to load.
	// Defaults to 0 (z=0).
	ZIndex int

	// ExplainedVariance overrides the descriptor's default PCA
	// explained-variance threshold. 0 means "use the descriptor default".
	ExplainedVariance float64

	// Seed seeds the surrogate's random source for reproducible sampling.
	// 0 leaves seeding to the clock.
	Seed int64
}

// Loader turns statistic names into ready-to-sample surrogates.
type Loader struct {
	source Source
}

// NewLoader creates a loader backed by the given artifact source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load resolves the named statistic, fetches its trained artifact and
// companion grid file, and decodes them into a Surrogate.
//
// Failure modes:
//   - registry.ErrUnknownStatistic if the name is not registered (the
//     source is never touched in this case);
//   - ErrNotFound if the artifact or grid file is missing at the source;
//   - ErrCorrupt if either file fails to deserialize, the artifact's
//     internal dimensions disagree with the companion grid, or the decoded
//     surrogate does not match the descriptor's parameter count.
//
// Every call returns a fresh, independently owned Surrogate; callers cache
// at their own discretion.
func (l *Loader) Load(ctx context.Context, name string, opts LoadOptions) (*surrogate.Surrogate, error) {
	desc, err := registry.Describe(name)
	if err != nil {
		return nil, err
	}

	artifactFile := registry.ArtifactFile(name, opts.ZIndex)
	artifactJSON, err := l.source.Fetch(ctx, artifactFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	gridFile := registry.GridFile(name, opts.ZIndex)
	gridJSON, err := l.source.Fetch(ctx, gridFile)
	if err != nil {
		return nil, fmt.Errorf("load %s grid: %w", name, err)
	}

	expVariance := opts.ExplainedVariance
	if expVariance == 0 {
		expVariance = desc.DefaultExplainedVariance
	}

	s, err := surrogate.Decode(artifactJSON, gridJSON, surrogate.Options{
		ExplainedVariance: expVariance,
		Seed:              opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, artifactFile, err)
	}

	// The artifact must have been trained for the statistic it is named
	// after; a mismatch means the bundle was assembled incorrectly.
	if s.Statistic() != name {
		return nil, fmt.Errorf("%w: %s claims statistic %q", ErrCorrupt, artifactFile, s.Statistic())
	}
	if s.ParamCount() != desc.ParamCount {
		return nil, fmt.Errorf("%w: %s trained with %d parameters, descriptor expects %d",
			ErrCorrupt, artifactFile, s.ParamCount(), desc.ParamCount)
	}

	return s, nil
}

// IsNotFound reports whether err indicates a missing artifact file.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsCorrupt reports whether err indicates a corrupt or inconsistent artifact.
func IsCorrupt(err error) bool { return errors.Is(err, ErrCorrupt) }
