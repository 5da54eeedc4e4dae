package metadata

// Physical parameter scaling factors. Callers supply parameters already
// divided by these (e.g. a kinetic wind velocity of 6500 km/s is passed as
// 0.65); the emulator performs no rescaling of its own.
const (
	SeedMassScale = 1e6
	VKinScale     = 1e4
	EpsScale      = 1e1
)

// Parameter describes one of the five canonical subgrid-physics inputs.
type Parameter struct {
	Name        string     `json:"name"`
	LatexName   string     `json:"latexName"`
	Range       [2]float64 `json:"range"`
	Description string     `json:"description"`
	Scale       float64    `json:"scale,omitempty"`
}

// ParameterTable holds the fixed, statistic-independent description of the
// canonical input parameters. 5-parameter statistics take all five in order;
// 2-parameter statistics take the last two (v_kin, epsilon_kin).
type ParameterTable struct {
	Names        []string              `json:"names"`
	LatexNames   []string              `json:"latexNames"`
	Ranges       map[string][2]float64 `json:"ranges"`
	Descriptions map[string]string     `json:"descriptions"`
	Scales       map[string]float64    `json:"scales"`
}

var canonicalParameters = []Parameter{
	{
		Name:        "kappa_w",
		LatexName:   `$\kappa_\text{w}$`,
		Range:       [2]float64{2.0, 4.0},
		Description: "Wind efficiency parameter",
	},
	{
		Name:        "e_w",
		LatexName:   `$e_\text{w}$`,
		Range:       [2]float64{0.2, 1.0},
		Description: "Wind energy fraction",
	},
	{
		Name:        "M_seed",
		LatexName:   `$M_\text{seed}/10^{6}$`,
		Range:       [2]float64{0.6, 1.2},
		Description: "Black hole seed mass (in 10^6 M_sun)",
		Scale:       SeedMassScale,
	},
	{
		Name:        "v_kin",
		LatexName:   `$v_\text{kin}/10^{4}$`,
		Range:       [2]float64{0.1, 1.2},
		Description: "Kinetic wind velocity (in 10^4 km/s)",
		Scale:       VKinScale,
	},
	{
		Name:        "epsilon_kin",
		LatexName:   `$\epsilon_\text{kin}/10^{1}$`,
		Range:       [2]float64{0.02, 1.2},
		Description: "Kinetic feedback efficiency (in 10^1)",
		Scale:       EpsScale,
	},
}

// Parameters returns the canonical parameter descriptions in input order.
// The returned slice is a copy.
func Parameters() []Parameter {
	return append([]Parameter(nil), canonicalParameters...)
}

// GetParameterInfo returns the canonical parameter table in the shape the
// HTTP API and documentation use.
func GetParameterInfo() ParameterTable {
	t := ParameterTable{
		Ranges:       make(map[string][2]float64, len(canonicalParameters)),
		Descriptions: make(map[string]string, len(canonicalParameters)),
		Scales:       make(map[string]float64),
	}
	for _, p := range canonicalParameters {
		t.Names = append(t.Names, p.Name)
		t.LatexNames = append(t.LatexNames, p.LatexName)
		t.Ranges[p.Name] = p.Range
		t.Descriptions[p.Name] = p.Description
		if p.Scale != 0 {
			t.Scales[p.Name] = p.Scale
		}
	}
	return t
}
