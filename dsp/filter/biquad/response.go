package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates the section's complex frequency response at frequency Hz
// for the given sample rate:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2), z = e^(jw)
func (s *Section) Response(frequency, sampleRate float64) complex128 {
	w := 2 * math.Pi * frequency / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
	den := complex(1, 0) + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2

	return num / den
}

// ResponseDB returns the section's magnitude response in dB at frequency Hz.
func (s *Section) ResponseDB(frequency, sampleRate float64) float64 {
	mag := cmplx.Abs(s.Response(frequency, sampleRate))
	return 20 * math.Log10(math.Max(1e-12, mag))
}
