// Package response measures the magnitude frequency response of an effect
// processor by rendering an impulse through it and transforming the result.
package response

import (
	"fmt"
	"math"
	"sort"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/mottysisam/vaist-forge/dsp/fx"
	"github.com/mottysisam/vaist-forge/dsp/signal"
)

const (
	defaultFFTSize = 8192
	magnitudeFloor = 1e-12
)

// Config holds measurement parameters.
type Config struct {
	SampleRate float64
	// FFTSize is the impulse render length and transform size. It must be a
	// power of two; zero selects the default.
	FFTSize int
}

// Result holds one measured response: bin center frequencies up to Nyquist
// and the magnitude at each in dB.
type Result struct {
	SampleRate  float64
	FFTSize     int
	Frequencies []float64
	MagnitudeDB []float64
}

// Measure renders a unit impulse through p and returns its magnitude
// response. The processor is prepared at the configured rate and reset, so
// any prior audio state is discarded; parameter values are kept.
func Measure(p *fx.Processor, cfg Config) (Result, error) {
	if cfg.SampleRate <= 0 {
		return Result{}, fmt.Errorf("response sample rate must be > 0: %f", cfg.SampleRate)
	}

	fftSize := cfg.FFTSize
	if fftSize == 0 {
		fftSize = defaultFFTSize
	}

	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return Result{}, fmt.Errorf("response fft size must be a power of two >= 2: %d", fftSize)
	}

	if err := p.Prepare(cfg.SampleRate); err != nil {
		return Result{}, err
	}

	p.Reset()

	// The impulse is rendered well below full scale so the output limiter
	// stays out of the way even for boosting effects; the headroom is
	// compensated after the transform.
	const impulseAmplitude = 0.125

	gen := signal.NewGenerator()

	impulse, err := gen.Impulse(impulseAmplitude, fftSize, 0)
	if err != nil {
		return Result{}, err
	}

	if err := p.Process([][]float64{impulse}, fftSize); err != nil {
		return Result{}, err
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, err
	}

	in := make([]complex128, fftSize)
	for i, v := range impulse {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, err
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	res := Result{
		SampleRate:  cfg.SampleRate,
		FFTSize:     fftSize,
		Frequencies: make([]float64, bins),
		MagnitudeDB: make([]float64, bins),
	}

	binHz := cfg.SampleRate / float64(fftSize)
	for i := 0; i < bins; i++ {
		res.Frequencies[i] = float64(i) * binHz

		m := mag[i] / impulseAmplitude
		if m < magnitudeFloor {
			m = magnitudeFloor
		}

		res.MagnitudeDB[i] = 20 * math.Log10(m)
	}

	return res, nil
}

// DBAt returns the magnitude in dB at freqHz, linearly interpolated between
// the two surrounding bins. Frequencies outside the measured range clamp to
// the nearest bin.
func (r Result) DBAt(freqHz float64) float64 {
	n := len(r.Frequencies)
	if n == 0 {
		return 0
	}

	if freqHz <= r.Frequencies[0] {
		return r.MagnitudeDB[0]
	}

	if freqHz >= r.Frequencies[n-1] {
		return r.MagnitudeDB[n-1]
	}

	j := sort.SearchFloat64s(r.Frequencies, freqHz)
	x0, x1 := r.Frequencies[j-1], r.Frequencies[j]
	t := (freqHz - x0) / (x1 - x0)

	return r.MagnitudeDB[j-1] + t*(r.MagnitudeDB[j]-r.MagnitudeDB[j-1])
}

// Curve evaluates the measured response at each requested frequency.
func (r Result) Curve(freqsHz []float64) []float64 {
	out := make([]float64, len(freqsHz))
	for i, f := range freqsHz {
		out[i] = r.DBAt(f)
	}

	return out
}
