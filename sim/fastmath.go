package sim

import "math"

// Fast math functions for hot-path physics calculations.
// These avoid float32->float64 conversions that Go's math package requires.

// fastExp approximates exp(x) for x in [-4, 4].
func fastExp(x float32) float32 {
	if x > 4 {
		return 54.6 // exp(4) ≈ 54.6
	}
	if x < -4 {
		return 0
	}
	// Padé approximation
	x2 := x * x
	return (12 + 6*x + x2) / (12 - 6*x + x2)
}

// fastSqrt approximates sqrt(x) using fast inverse sqrt.
func fastSqrt(x float32) float32 {
	if x <= 0 {
		return 0
	}
	i := math.Float32bits(x)
	i = 0x5f375a86 - (i >> 1)
	y := math.Float32frombits(i)
	y = y * (1.5 - 0.5*x*y*y)
	return x * y
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// mod returns positive modulo (Go's % can return negative).
func mod(a, b float32) float32 {
	m := float32(math.Mod(float64(a), float64(b)))
	if m < 0 {
		m += b
	}
	return m
}
