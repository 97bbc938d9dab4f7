package biquad

import "math"

// Design guards. The cookbook formulas divide by Q and become unstable as the
// frequency reaches Nyquist, so every design clamps its inputs first:
// frequency to (0, fs/2) and Q to a strictly positive floor.
const (
	minQ            = 0.05
	minFrequencyHz  = 1.0
	nyquistFraction = 0.49
)

func clampFrequency(frequency, sampleRate float64) float64 {
	maxHz := sampleRate * nyquistFraction
	if math.IsNaN(frequency) || frequency < minFrequencyHz {
		return minFrequencyHz
	}
	if frequency > maxHz {
		return maxHz
	}
	return frequency
}

func clampQ(q float64) float64 {
	if math.IsNaN(q) || q < minQ {
		return minQ
	}
	return q
}

// omegaAlpha computes the normalized angular frequency and the cookbook
// bandwidth term shared by every design.
func omegaAlpha(frequency, q, sampleRate float64) (sinW, cosW, alpha float64) {
	w := 2 * math.Pi * clampFrequency(frequency, sampleRate) / sampleRate
	sinW = math.Sin(w)
	cosW = math.Cos(w)
	alpha = sinW / (2 * clampQ(q))
	return sinW, cosW, alpha
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	inv := 1 / a0
	return Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: a1 * inv,
		A2: a2 * inv,
	}
}

// Lowpass designs a second-order lowpass at frequency Hz with quality q.
func Lowpass(sampleRate, frequency, q float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)

	b1 := 1 - cosW
	b0 := b1 / 2

	return normalize(b0, b1, b0, 1+alpha, -2*cosW, 1-alpha)
}

// Highpass designs a second-order highpass at frequency Hz with quality q.
func Highpass(sampleRate, frequency, q float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)

	b0 := (1 + cosW) / 2
	b1 := -(1 + cosW)

	return normalize(b0, b1, b0, 1+alpha, -2*cosW, 1-alpha)
}

// Bandpass designs a constant-skirt bandpass at frequency Hz with quality q.
func Bandpass(sampleRate, frequency, q float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)

	return normalize(alpha, 0, -alpha, 1+alpha, -2*cosW, 1-alpha)
}

// Notch designs a band-reject filter at frequency Hz with quality q.
func Notch(sampleRate, frequency, q float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)

	return normalize(1, -2*cosW, 1, 1+alpha, -2*cosW, 1-alpha)
}

// Peaking designs a peaking EQ band at frequency Hz with quality q and the
// given boost/cut in dB.
func Peaking(sampleRate, frequency, q, gainDB float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)
	a := math.Pow(10, gainDB/40)

	return normalize(1+alpha*a, -2*cosW, 1-alpha*a, 1+alpha/a, -2*cosW, 1-alpha/a)
}

// LowShelf designs a low shelf at frequency Hz with slope quality q and the
// given boost/cut in dB.
func LowShelf(sampleRate, frequency, q, gainDB float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cosW + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cosW)
	b2 := a * ((a + 1) - (a-1)*cosW - beta)
	a0 := (a + 1) + (a-1)*cosW + beta
	a1 := -2 * ((a - 1) + (a+1)*cosW)
	a2 := (a + 1) + (a-1)*cosW - beta

	return normalize(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high shelf at frequency Hz with slope quality q and the
// given boost/cut in dB.
func HighShelf(sampleRate, frequency, q, gainDB float64) Coefficients {
	_, cosW, alpha := omegaAlpha(frequency, q, sampleRate)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cosW + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cosW)
	b2 := a * ((a + 1) + (a-1)*cosW - beta)
	a0 := (a + 1) - (a-1)*cosW + beta
	a1 := 2 * ((a - 1) - (a+1)*cosW)
	a2 := (a + 1) - (a-1)*cosW - beta

	return normalize(b0, b1, b2, a0, a1, a2)
}
