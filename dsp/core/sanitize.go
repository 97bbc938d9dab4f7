package core

import "math"

// SanitizeSample replaces non-finite values with 0 and clamps the rest to [-1, 1].
func SanitizeSample(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	if x < -1 {
		return -1
	}

	if x > 1 {
		return 1
	}

	return x
}

// Sanitize rewrites buf in place so every sample is finite and in [-1, 1].
// This is the last line of defense against filter instability or runaway
// feedback; it runs on every output block regardless of effect type.
func Sanitize(buf []float64) {
	for i, x := range buf {
		buf[i] = SanitizeSample(x)
	}
}
