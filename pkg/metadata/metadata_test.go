package metadata

import (
	"errors"
	"testing"

	"github.com/cosmohub/subgridemu/pkg/registry"
)

func TestXGrid(t *testing.T) {
	grid, label, err := XGrid("GSMF")
	if err != nil {
		t.Fatalf("XGrid(GSMF) error: %v", err)
	}
	if len(grid) != 39 {
		t.Errorf("len(grid) = %d, want 39", len(grid))
	}
	if label != "Stellar mass [M_sun]" {
		t.Errorf("label = %q", label)
	}
}

func TestXGrid_ReturnsCopy(t *testing.T) {
	grid, _, err := XGrid("CSFR")
	if err != nil {
		t.Fatal(err)
	}
	grid[0] = -1

	again, _, _ := XGrid("CSFR")
	if again[0] == -1 {
		t.Error("mutating XGrid() result leaked into the registry")
	}
}

func TestXGrid_Unknown(t *testing.T) {
	_, _, err := XGrid("nope")
	if !errors.Is(err, registry.ErrUnknownStatistic) {
		t.Errorf("error = %v, want ErrUnknownStatistic", err)
	}
}

func TestGetPlotInfo(t *testing.T) {
	info, err := GetPlotInfo("Pk")
	if err != nil {
		t.Fatalf("GetPlotInfo(Pk) error: %v", err)
	}
	if info.Title != "Total power spectra ratio" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.XScale != registry.ScaleLog {
		t.Errorf("XScale = %q, want log", info.XScale)
	}
	if info.YScale != registry.ScaleLinear {
		t.Errorf("YScale = %q, want linear", info.YScale)
	}
}

func TestValidRange(t *testing.T) {
	low, high, err := ValidRange("GSMF")
	if err != nil {
		t.Fatalf("ValidRange(GSMF) error: %v", err)
	}
	if low != 5e9 || high != 3e11 {
		t.Errorf("range = [%v, %v], want [5e9, 3e11]", low, high)
	}

	if _, _, err := ValidRange("nope"); !errors.Is(err, registry.ErrUnknownStatistic) {
		t.Errorf("error = %v, want ErrUnknownStatistic", err)
	}
}

func TestParameters_Order(t *testing.T) {
	params := Parameters()
	if len(params) != 5 {
		t.Fatalf("len(Parameters()) = %d, want 5", len(params))
	}

	wantOrder := []string{"kappa_w", "e_w", "M_seed", "v_kin", "epsilon_kin"}
	for i, want := range wantOrder {
		if params[i].Name != want {
			t.Errorf("parameter %d = %q, want %q", i, params[i].Name, want)
		}
	}

	// 2-parameter statistics take the last two in order.
	if params[3].Name != "v_kin" || params[4].Name != "epsilon_kin" {
		t.Error("last two parameters must be v_kin, epsilon_kin")
	}
}

func TestParameters_Ranges(t *testing.T) {
	tests := map[string][2]float64{
		"kappa_w":     {2.0, 4.0},
		"e_w":         {0.2, 1.0},
		"M_seed":      {0.6, 1.2},
		"v_kin":       {0.1, 1.2},
		"epsilon_kin": {0.02, 1.2},
	}

	for _, p := range Parameters() {
		want, ok := tests[p.Name]
		if !ok {
			t.Errorf("unexpected parameter %q", p.Name)
			continue
		}
		if p.Range != want {
			t.Errorf("%s range = %v, want %v", p.Name, p.Range, want)
		}
	}
}

func TestGetParameterInfo_Scales(t *testing.T) {
	table := GetParameterInfo()

	if len(table.Names) != 5 {
		t.Fatalf("len(Names) = %d, want 5", len(table.Names))
	}

	wantScales := map[string]float64{
		"M_seed":      SeedMassScale,
		"v_kin":       VKinScale,
		"epsilon_kin": EpsScale,
	}
	if len(table.Scales) != len(wantScales) {
		t.Errorf("len(Scales) = %d, want %d", len(table.Scales), len(wantScales))
	}
	for name, want := range wantScales {
		if got := table.Scales[name]; got != want {
			t.Errorf("Scales[%s] = %v, want %v", name, got, want)
		}
	}

	// Unscaled parameters must not appear in the scale map.
	if _, ok := table.Scales["kappa_w"]; ok {
		t.Error("kappa_w should have no scale entry")
	}
}
