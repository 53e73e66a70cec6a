package calculator

// AlignSuffix trims the longer of two series so that both end on the same bar.
// Every indicator series is aligned to the tail of its input, so after trimming
// index i of a and index i of b refer to the same bar.
func AlignSuffix(a, b []float64) ([]float64, []float64) {
	if len(a) > len(b) {
		return a[len(a)-len(b):], b
	}
	return a, b[len(b)-len(a):]
}

func last(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
