package registry

import "math"

// Linspace returns n evenly spaced values over [start, stop] inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	// Avoid accumulated rounding on the endpoint.
	out[n-1] = stop
	return out
}

// Logspace returns n log-spaced values between 10^start and 10^stop.
func Logspace(start, stop float64, n int) []float64 {
	return Pow10(Linspace(start, stop, n))
}

// LogspaceBetween returns n log-spaced values between lo and hi (both > 0).
func LogspaceBetween(lo, hi float64, n int) []float64 {
	return Logspace(math.Log10(lo), math.Log10(hi), n)
}

// Pow10 maps each element x to 10^x, returning a new slice.
func Pow10(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Pow(10, x)
	}
	return out
}
