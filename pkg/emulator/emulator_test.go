package emulator

import (
	"errors"
	"math"
	"testing"

	"github.com/cosmohub/subgridemu/pkg/registry"
)

// stubSampler returns canned curves and records whether it was invoked.
type stubSampler struct {
	grid       []float64
	curves     [][]float64
	err        error
	paramCount int
	calls      int
	lastN      int
}

func (s *stubSampler) Sample(params []float64, n int) ([][]float64, error) {
	s.calls++
	s.lastN = n
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, n)
	for i := range out {
		src := s.curves[i%len(s.curves)]
		out[i] = append([]float64(nil), src...)
	}
	return out, nil
}

func (s *stubSampler) Grid() []float64 { return s.grid }
func (s *stubSampler) ParamCount() int { return s.paramCount }

func descriptor(t *testing.T, name string) *registry.Descriptor {
	t.Helper()
	d, err := registry.Describe(name)
	if err != nil {
		t.Fatalf("Describe(%q): %v", name, err)
	}
	return d
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name     string
		params   []float64
		expected int
		wantErr  error
	}{
		{"valid 5", []float64{3, 0.5, 1, 0.7, 0.1}, 5, nil},
		{"valid 2", []float64{0.7, 0.1}, 2, nil},
		{"too few", []float64{1, 2}, 5, ErrParameterCount},
		{"too many", []float64{1, 2, 3}, 2, ErrParameterCount},
		{"empty", nil, 5, ErrParameterCount},
		{"nan", []float64{1, math.NaN(), 3, 4, 5}, 5, ErrParameterType},
		{"pos inf", []float64{1, 2, math.Inf(1), 4, 5}, 5, ErrParameterType},
		{"neg inf", []float64{math.Inf(-1), 2}, 2, ErrParameterType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParams(tt.params, tt.expected)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateParams() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateParams() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPredict_WrongCount_NoSamplerCall(t *testing.T) {
	stub := &stubSampler{grid: []float64{1, 2, 3}, paramCount: 5}
	e := New(descriptor(t, "CGD"), stub)

	_, err := e.Predict([]float64{1, 2}, 10)
	if !errors.Is(err, ErrParameterCount) {
		t.Fatalf("error = %v, want ErrParameterCount", err)
	}
	if stub.calls != 0 {
		t.Errorf("sampler invoked %d times, want 0 (validation must come first)", stub.calls)
	}
}

func TestPredict_DefaultSamples(t *testing.T) {
	stub := &stubSampler{
		grid:       []float64{1, 2},
		curves:     [][]float64{{1, 2}},
		paramCount: 5,
	}
	e := New(descriptor(t, "CGD"), stub)

	result, err := e.Predict([]float64{3, 0.5, 1, 0.7, 0.1}, 0)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if stub.lastN != DefaultSamples {
		t.Errorf("sampler received n = %d, want %d", stub.lastN, DefaultSamples)
	}
	if result.Samples != DefaultSamples {
		t.Errorf("result.Samples = %d, want %d", result.Samples, DefaultSamples)
	}
}

func TestPredict_SamplerError(t *testing.T) {
	stub := &stubSampler{
		grid:       []float64{1},
		err:        errors.New("boom"),
		paramCount: 5,
	}
	e := New(descriptor(t, "CGD"), stub)

	_, err := e.Predict([]float64{3, 0.5, 1, 0.7, 0.1}, 10)
	if !errors.Is(err, ErrPrediction) {
		t.Fatalf("error = %v, want ErrPrediction", err)
	}
}

func TestPredict_IdentityStatistic(t *testing.T) {
	stub := &stubSampler{
		grid: []float64{0.1, 0.2, 0.3},
		curves: [][]float64{
			{1, 2, 3},
			{3, 4, 5},
		},
		paramCount: 5,
	}
	e := New(descriptor(t, "CGD"), stub)

	result, err := e.Predict([]float64{3, 0.5, 1, 0.7, 0.1}, 2)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	if result.Statistic != "CGD" {
		t.Errorf("Statistic = %q, want CGD", result.Statistic)
	}
	wantMean := []float64{2, 3, 4}
	for j, want := range wantMean {
		if math.Abs(result.Mean[j]-want) > 1e-12 {
			t.Errorf("Mean[%d] = %v, want %v", j, result.Mean[j], want)
		}
	}
}

func TestPredict_Log10Statistic(t *testing.T) {
	// GSMF curves are sampled on the linear scale and summarized in log10.
	stub := &stubSampler{
		grid:       []float64{1e9, 1e10},
		curves:     [][]float64{{100, 1000}},
		paramCount: 5,
	}
	e := New(descriptor(t, "GSMF"), stub)

	result, err := e.Predict([]float64{3, 0.5, 1, 0.7, 0.1}, 4)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	if math.Abs(result.Mean[0]-2) > 1e-12 || math.Abs(result.Mean[1]-3) > 1e-12 {
		t.Errorf("Mean = %v, want [2 3] (log10 of the sampled curve)", result.Mean)
	}
}

func TestPredict_BandOrdering(t *testing.T) {
	stub := &stubSampler{
		grid: []float64{1, 2},
		curves: [][]float64{
			{1, 10},
			{2, 20},
			{3, 30},
			{4, 40},
			{5, 50},
		},
		paramCount: 5,
	}
	e := New(descriptor(t, "CGD"), stub)

	result, err := e.Predict([]float64{3, 0.5, 1, 0.7, 0.1}, 50)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	for j := range result.Grid {
		if result.Lower[j] > result.Mean[j] || result.Mean[j] > result.Upper[j] {
			t.Errorf("point %d: band [%v, %v] does not bracket mean %v",
				j, result.Lower[j], result.Upper[j], result.Mean[j])
		}
	}
}

func TestPredict_GridIsCopy(t *testing.T) {
	grid := []float64{1, 2, 3}
	stub := &stubSampler{
		grid:       grid,
		curves:     [][]float64{{1, 2, 3}},
		paramCount: 5,
	}
	e := New(descriptor(t, "CGD"), stub)

	result, err := e.Predict([]float64{3, 0.5, 1, 0.7, 0.1}, 1)
	if err != nil {
		t.Fatal(err)
	}

	result.Grid[0] = -99
	if grid[0] == -99 {
		t.Error("mutating result grid leaked into the sampler's grid")
	}
}

func TestTransformCurve(t *testing.T) {
	curve := []float64{1, 10, 100}
	TransformCurve(registry.TransformLog10, curve)
	want := []float64{0, 1, 2}
	for i := range want {
		if math.Abs(curve[i]-want[i]) > 1e-12 {
			t.Errorf("log10[%d] = %v, want %v", i, curve[i], want[i])
		}
	}

	TransformCurve(registry.TransformPow10, curve)
	wantBack := []float64{1, 10, 100}
	for i := range wantBack {
		if math.Abs(curve[i]-wantBack[i]) > 1e-9 {
			t.Errorf("round-trip[%d] = %v, want %v", i, curve[i], wantBack[i])
		}
	}

	before := append([]float64(nil), curve...)
	TransformCurve(registry.TransformIdentity, curve)
	for i := range before {
		if curve[i] != before[i] {
			t.Errorf("identity changed element %d", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	curves := [][]float64{
		{1, 100},
		{2, 200},
		{3, 300},
		{4, 400},
	}

	mean, lower, upper := Summarize(curves)

	if math.Abs(mean[0]-2.5) > 1e-12 || math.Abs(mean[1]-250) > 1e-12 {
		t.Errorf("mean = %v, want [2.5 250]", mean)
	}
	for j := range mean {
		if lower[j] > mean[j] || mean[j] > upper[j] {
			t.Errorf("point %d: band [%v, %v] does not bracket mean %v", j, lower[j], upper[j], mean[j])
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	mean, lower, upper := Summarize(nil)
	if mean != nil || lower != nil || upper != nil {
		t.Error("Summarize(nil) should return nil slices")
	}
}

func TestSummarize_SingleCurve(t *testing.T) {
	mean, lower, upper := Summarize([][]float64{{7, 8}})
	for j, want := range []float64{7, 8} {
		if mean[j] != want || lower[j] != want || upper[j] != want {
			t.Errorf("point %d: got mean=%v lower=%v upper=%v, want all %v",
				j, mean[j], lower[j], upper[j], want)
		}
	}
}
