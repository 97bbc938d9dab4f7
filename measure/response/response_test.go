package response

import (
	"math"
	"testing"

	"github.com/mottysisam/vaist-forge/dsp/fx"
)

func newEffect(t *testing.T, name string) *fx.Processor {
	t.Helper()

	desc, ok := fx.ByName(name)
	if !ok {
		t.Fatalf("no descriptor named %q", name)
	}

	p, err := fx.New(desc)
	if err != nil {
		t.Fatalf("fx.New(%q): %v", name, err)
	}

	return p
}

func TestMeasureValidatesConfig(t *testing.T) {
	p := newEffect(t, "gain")

	if _, err := Measure(p, Config{SampleRate: 0}); err == nil {
		t.Error("zero sample rate accepted, want error")
	}

	if _, err := Measure(p, Config{SampleRate: 48000, FFTSize: 1000}); err == nil {
		t.Error("non-power-of-two fft size accepted, want error")
	}
}

func TestUnityGainMeasuresFlat(t *testing.T) {
	p := newEffect(t, "gain")

	res, err := Measure(p, Config{SampleRate: 48000, FFTSize: 4096})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	if len(res.Frequencies) != 4096/2+1 {
		t.Fatalf("bin count = %d, want %d", len(res.Frequencies), 4096/2+1)
	}

	for _, f := range []float64{100, 1000, 10000} {
		if db := res.DBAt(f); math.Abs(db) > 0.1 {
			t.Errorf("unity gain at %g Hz = %g dB, want ≈0", f, db)
		}
	}
}

func TestLowpassResponseShape(t *testing.T) {
	p := newEffect(t, "lowpass")

	// Default cutoff maps to roughly 632 Hz.
	res, err := Measure(p, Config{SampleRate: 48000})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	if db := res.DBAt(50); math.Abs(db) > 1 {
		t.Errorf("passband at 50 Hz = %g dB, want ≈0", db)
	}

	if db := res.DBAt(10000); db > -40 {
		t.Errorf("stopband at 10 kHz = %g dB, want deep attenuation", db)
	}

	if lo, hi := res.DBAt(200), res.DBAt(5000); hi >= lo {
		t.Errorf("response not decreasing: %g dB at 200 Hz vs %g dB at 5 kHz", lo, hi)
	}
}

func TestEQ3BoostShowsInResponse(t *testing.T) {
	p := newEffect(t, "eq3")

	if err := p.SetParameter("midGain", 12); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	if err := p.SetParameter("master", 1); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}

	res, err := Measure(p, Config{SampleRate: 48000})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	if db := res.DBAt(1000); math.Abs(db-12) > 1 {
		t.Errorf("mid boost at 1 kHz = %g dB, want ≈12", db)
	}
}

func TestDBAtClampsOutOfRange(t *testing.T) {
	p := newEffect(t, "gain")

	res, err := Measure(p, Config{SampleRate: 48000, FFTSize: 1024})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	low := res.DBAt(-10)
	if low != res.MagnitudeDB[0] {
		t.Errorf("below-range query = %g, want first bin %g", low, res.MagnitudeDB[0])
	}

	high := res.DBAt(1e6)
	if last := res.MagnitudeDB[len(res.MagnitudeDB)-1]; high != last {
		t.Errorf("above-range query = %g, want last bin %g", high, last)
	}
}

func TestCurveMatchesDBAt(t *testing.T) {
	p := newEffect(t, "lowpass")

	res, err := Measure(p, Config{SampleRate: 48000, FFTSize: 2048})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}

	freqs := []float64{100, 632, 3000}
	curve := res.Curve(freqs)

	for i, f := range freqs {
		if curve[i] != res.DBAt(f) {
			t.Errorf("Curve[%d] = %g, DBAt(%g) = %g", i, curve[i], f, res.DBAt(f))
		}
	}
}
