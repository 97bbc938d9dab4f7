// Package fx contains the block-based effect pipeline: declarative effect
// descriptors, the stage runtimes they compile into, and the Processor that
// drives them through the prepare/reset/process lifecycle.
package fx

import (
	"github.com/mottysisam/vaist-forge/dsp/param"
	"github.com/mottysisam/vaist-forge/dsp/smooth"
)

// StageKind tags one processing stage variant in a descriptor.
type StageKind int

const (
	// StageGain multiplies by a smoothed linear gain derived from a dB mapping.
	StageGain StageKind = iota
	// StageFilter runs one biquad section per channel.
	StageFilter
	// StageShaper applies a bounded nonlinearity to a driven signal.
	StageShaper
	// StageDelay is a feedback delay line read at a parameterized time.
	StageDelay
	// StageModDelay is an LFO-modulated short delay (flanger/chorus engine).
	StageModDelay
	// StageEQ3 is a low shelf, peaking mid, and high shelf in series.
	StageEQ3
)

// FilterType selects the biquad design used by a StageFilter.
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterHighpass
	FilterBandpass
	FilterNotch
)

// ShaperShape selects the transfer curve used by a StageShaper.
type ShaperShape int

const (
	// ShapeTanh is smooth symmetric saturation.
	ShapeTanh ShaperShape = iota
	// ShapeAtan is arctangent saturation normalized to ±1.
	ShapeAtan
	// ShapeSoftClip is the cubic x - x³/3 curve, flat at ±2/3 beyond unity.
	ShapeSoftClip
	// ShapeHardClip clamps to ±1.
	ShapeHardClip
)

// StageSpec declares one stage of an effect. It carries data only; runtime
// state is built from it once at Prepare so the per-sample path stays free of
// construction branches.
type StageSpec struct {
	Kind   StageKind
	Filter FilterType
	Shape  ShaperShape

	// MaxDelaySeconds sizes the delay line for delay-based stages at the
	// prepared sample rate.
	MaxDelaySeconds float64
}

// Descriptor declares a complete effect: its parameters in persistence order,
// its ordered stage list, and the optional dry/wet mix parameter applied by
// the orchestrator after the last stage. MixScale converts the raw mix
// parameter to [0, 1] (1 for normalized parameters, 0.01 for percentages).
type Descriptor struct {
	Name     string
	Params   []param.Desc
	Stages   []StageSpec
	MixParam string
	MixScale float64
}

// Gain is a single smoothed gain control over ±24 dB.
func Gain() Descriptor {
	return Descriptor{
		Name: "gain",
		Params: []param.Desc{
			{ID: "gain", Min: 0, Max: 1, Default: 0.5, SmoothingMs: smooth.DefaultTimeConstantMs},
		},
		Stages: []StageSpec{{Kind: StageGain}},
	}
}

// Filter is a resonant second-order filter with a logarithmic cutoff.
func Filter(typ FilterType) Descriptor {
	return Descriptor{
		Name: filterName(typ),
		Params: []param.Desc{
			{ID: "cutoff", Min: 0, Max: 1, Default: 0.5},
			{ID: "resonance", Min: 0, Max: 1, Default: 0},
		},
		Stages: []StageSpec{{Kind: StageFilter, Filter: typ}},
	}
}

// Saturator is a driven waveshaper with output compensation and dry/wet mix.
func Saturator(shape ShaperShape) Descriptor {
	return Descriptor{
		Name: shaperName(shape),
		Params: []param.Desc{
			{ID: "drive", Min: 0, Max: 1, Default: 0.5},
			{ID: "mix", Min: 0, Max: 1, Default: 1, SmoothingMs: smooth.DefaultTimeConstantMs},
		},
		Stages:   []StageSpec{{Kind: StageShaper, Shape: shape}},
		MixParam: "mix",
		MixScale: 1,
	}
}

// Delay is a feedback delay up to one second.
func Delay() Descriptor {
	return Descriptor{
		Name: "delay",
		Params: []param.Desc{
			{ID: "time", Min: 0, Max: 1, Default: 0.25},
			{ID: "feedback", Min: 0, Max: 1, Default: 0.35},
			{ID: "mix", Min: 0, Max: 1, Default: 0.25, SmoothingMs: smooth.DefaultTimeConstantMs},
		},
		Stages:   []StageSpec{{Kind: StageDelay, MaxDelaySeconds: 1}},
		MixParam: "mix",
		MixScale: 1,
	}
}

// Flanger is a short modulated delay with bipolar feedback and stereo spread.
func Flanger() Descriptor {
	return Descriptor{
		Name: "flanger",
		Params: []param.Desc{
			{ID: "rate", Min: 0.01, Max: 10, Default: 0.5},
			{ID: "depth", Min: 0, Max: 100, Default: 60},
			{ID: "manual", Min: 0.1, Max: 15, Default: 2},
			{ID: "feedback", Min: -95, Max: 95, Default: 40},
			{ID: "waveform", Min: 0, Max: 3, Default: 0},
			{ID: "spread", Min: 0, Max: 180, Default: 0},
			{ID: "mix", Min: 0, Max: 100, Default: 50, SmoothingMs: smooth.DefaultTimeConstantMs},
		},
		Stages:   []StageSpec{{Kind: StageModDelay, MaxDelaySeconds: 0.04}},
		MixParam: "mix",
		MixScale: 0.01,
	}
}

// Chorus is the same modulated-delay engine at chorus depths.
func Chorus() Descriptor {
	return Descriptor{
		Name: "chorus",
		Params: []param.Desc{
			{ID: "rate", Min: 0.01, Max: 10, Default: 0.8},
			{ID: "depth", Min: 0, Max: 100, Default: 35},
			{ID: "manual", Min: 1, Max: 30, Default: 12},
			{ID: "feedback", Min: -95, Max: 95, Default: 0},
			{ID: "waveform", Min: 0, Max: 3, Default: 0},
			{ID: "spread", Min: 0, Max: 180, Default: 90},
			{ID: "mix", Min: 0, Max: 100, Default: 50, SmoothingMs: smooth.DefaultTimeConstantMs},
		},
		Stages:   []StageSpec{{Kind: StageModDelay, MaxDelaySeconds: 0.08}},
		MixParam: "mix",
		MixScale: 0.01,
	}
}

// ThreeBandEQ is a low shelf, peaking mid, and high shelf with master level.
func ThreeBandEQ() Descriptor {
	return Descriptor{
		Name: "eq3",
		Params: []param.Desc{
			{ID: "lowGain", Min: -24, Max: 24, Default: 0},
			{ID: "lowFreq", Min: 40, Max: 500, Default: 120},
			{ID: "midGain", Min: -24, Max: 24, Default: 0},
			{ID: "midFreq", Min: 200, Max: 5000, Default: 1000},
			{ID: "midQ", Min: 0.2, Max: 8, Default: 1},
			{ID: "highGain", Min: -24, Max: 24, Default: 0},
			{ID: "highFreq", Min: 2000, Max: 16000, Default: 6000},
			{ID: "master", Min: 0, Max: 1, Default: 0.75, SmoothingMs: smooth.DefaultTimeConstantMs},
		},
		Stages: []StageSpec{{Kind: StageEQ3}},
	}
}

// ByName returns the prebuilt descriptor registered under name.
func ByName(name string) (Descriptor, bool) {
	switch name {
	case "gain":
		return Gain(), true
	case "lowpass":
		return Filter(FilterLowpass), true
	case "highpass":
		return Filter(FilterHighpass), true
	case "bandpass":
		return Filter(FilterBandpass), true
	case "notch":
		return Filter(FilterNotch), true
	case "saturator":
		return Saturator(ShapeTanh), true
	case "softclip":
		return Saturator(ShapeSoftClip), true
	case "delay":
		return Delay(), true
	case "flanger":
		return Flanger(), true
	case "chorus":
		return Chorus(), true
	case "eq3":
		return ThreeBandEQ(), true
	}

	return Descriptor{}, false
}

// Names lists every registered descriptor name.
func Names() []string {
	return []string{
		"gain", "lowpass", "highpass", "bandpass", "notch",
		"saturator", "softclip", "delay", "flanger", "chorus", "eq3",
	}
}

func filterName(typ FilterType) string {
	switch typ {
	case FilterHighpass:
		return "highpass"
	case FilterBandpass:
		return "bandpass"
	case FilterNotch:
		return "notch"
	default:
		return "lowpass"
	}
}

func shaperName(shape ShaperShape) string {
	switch shape {
	case ShapeSoftClip:
		return "softclip"
	case ShapeHardClip:
		return "hardclip"
	case ShapeAtan:
		return "atansat"
	default:
		return "saturator"
	}
}
