package fx

import (
	"fmt"
	"math"

	"github.com/mottysisam/vaist-forge/dsp/core"
	"github.com/mottysisam/vaist-forge/dsp/delay"
	"github.com/mottysisam/vaist-forge/dsp/filter/biquad"
)

// Stage mapping constants. Parameter values arrive normalized or in the real
// units declared by the descriptor; these constants define how they map onto
// DSP quantities.
const (
	gainRangeDB = 24.0

	filterMinHz = 20.0
	filterMaxHz = 20000.0
	filterMinQ  = 0.5
	filterMaxQ  = 10.0

	shaperPreGainMax   = 10.0
	shaperCompensation = 0.7

	// feedbackAttenuation is a fixed stability margin on every delay-line
	// feedback write, keeping the loop gain below unity even when the
	// feedback parameter sits at its extreme.
	feedbackAttenuation = 0.9

	shelfQ = 0.707
)

// stageRuntime is the per-stage processing contract. update runs once per
// block with the smoothed parameter snapshot; processChannel runs the
// per-sample path for one channel; finishBlock advances any state shared
// across channels (the modulation LFO phase); reset clears transient state.
type stageRuntime interface {
	update(snap []float64, frames int)
	processChannel(ch int, buf []float64)
	finishBlock(frames int)
	reset()
}

func buildStage(spec StageSpec, p *Processor) (stageRuntime, error) {
	switch spec.Kind {
	case StageGain:
		return newGainStage(p)
	case StageFilter:
		return newFilterStage(spec, p)
	case StageShaper:
		return newShaperStage(spec, p)
	case StageDelay:
		return newDelayStage(spec, p)
	case StageModDelay:
		return newModDelayStage(spec, p)
	case StageEQ3:
		return newEQ3Stage(p)
	}

	return nil, fmt.Errorf("fx: unknown stage kind: %d", spec.Kind)
}

// paramIndex resolves a parameter id for a stage; every descriptor must
// declare the parameters its stages consume.
func paramIndex(p *Processor, id string) (int, error) {
	i := p.store.Index(id)
	if i < 0 {
		return 0, fmt.Errorf("fx: descriptor %q is missing param %q", p.desc.Name, id)
	}

	return i, nil
}

// gainStage multiplies by a linear gain derived from the normalized gain
// parameter mapped over ±gainRangeDB.
type gainStage struct {
	gainIdx int
	gain    float64
}

func newGainStage(p *Processor) (stageRuntime, error) {
	idx, err := paramIndex(p, "gain")
	if err != nil {
		return nil, err
	}

	return &gainStage{gainIdx: idx, gain: 1}, nil
}

func (g *gainStage) update(snap []float64, _ int) {
	db := snap[g.gainIdx]*2*gainRangeDB - gainRangeDB
	g.gain = core.DBToLinear(db)
}

func (g *gainStage) processChannel(_ int, buf []float64) {
	for i := range buf {
		buf[i] *= g.gain
	}
}

func (g *gainStage) finishBlock(int) {}

func (g *gainStage) reset() {}

// filterStage runs one biquad per channel. Coefficients are recomputed every
// block from the current snapshot; cheap relative to the block, and always at
// most one block stale under rapid automation.
type filterStage struct {
	typ        FilterType
	cutoffIdx  int
	resIdx     int
	sampleRate float64
	sections   []*biquad.Section
}

func newFilterStage(spec StageSpec, p *Processor) (stageRuntime, error) {
	cutoffIdx, err := paramIndex(p, "cutoff")
	if err != nil {
		return nil, err
	}

	resIdx, err := paramIndex(p, "resonance")
	if err != nil {
		return nil, err
	}

	sections := make([]*biquad.Section, p.maxChannels)
	for i := range sections {
		sections[i] = biquad.NewSection(biquad.Identity())
	}

	return &filterStage{
		typ:        spec.Filter,
		cutoffIdx:  cutoffIdx,
		resIdx:     resIdx,
		sampleRate: p.sampleRate,
		sections:   sections,
	}, nil
}

func (f *filterStage) update(snap []float64, _ int) {
	// Logarithmic cutoff mapping over the audible range.
	freq := filterMinHz * math.Pow(filterMaxHz/filterMinHz, snap[f.cutoffIdx])
	q := filterMinQ + snap[f.resIdx]*(filterMaxQ-filterMinQ)

	var c biquad.Coefficients

	switch f.typ {
	case FilterHighpass:
		c = biquad.Highpass(f.sampleRate, freq, q)
	case FilterBandpass:
		c = biquad.Bandpass(f.sampleRate, freq, q)
	case FilterNotch:
		c = biquad.Notch(f.sampleRate, freq, q)
	default:
		c = biquad.Lowpass(f.sampleRate, freq, q)
	}

	for _, s := range f.sections {
		s.SetCoefficients(c)
	}
}

func (f *filterStage) processChannel(ch int, buf []float64) {
	f.sections[ch].ProcessBlock(buf)
}

func (f *filterStage) finishBlock(int) {}

func (f *filterStage) reset() {
	for _, s := range f.sections {
		s.Reset()
	}
}

// shaperStage drives the input and applies a bounded transfer curve with
// fixed output compensation.
type shaperStage struct {
	shape    ShaperShape
	driveIdx int
	preGain  float64
}

func newShaperStage(spec StageSpec, p *Processor) (stageRuntime, error) {
	idx, err := paramIndex(p, "drive")
	if err != nil {
		return nil, err
	}

	return &shaperStage{shape: spec.Shape, driveIdx: idx, preGain: 1}, nil
}

func (s *shaperStage) update(snap []float64, _ int) {
	s.preGain = 1 + snap[s.driveIdx]*(shaperPreGainMax-1)
}

func (s *shaperStage) processChannel(_ int, buf []float64) {
	for i, x := range buf {
		driven := x * s.preGain

		var shaped float64

		switch s.shape {
		case ShapeAtan:
			shaped = math.Atan(driven) * (2 / math.Pi)
		case ShapeSoftClip:
			switch {
			case driven > 1:
				shaped = 2.0 / 3.0
			case driven < -1:
				shaped = -2.0 / 3.0
			default:
				shaped = driven - driven*driven*driven/3
			}
		case ShapeHardClip:
			shaped = core.Clamp(driven, -1, 1)
		default:
			shaped = math.Tanh(driven)
		}

		buf[i] = shaped * shaperCompensation
	}
}

func (s *shaperStage) finishBlock(int) {}

func (s *shaperStage) reset() {}

// delayStage is a feedback delay. The stage output is fully wet; the
// orchestrator blends it against the dry signal.
type delayStage struct {
	timeIdx     int
	feedbackIdx int
	sampleRate  float64
	maxSeconds  float64

	lines []*delay.Line

	delaySamples float64
	feedback     float64
}

func newDelayStage(spec StageSpec, p *Processor) (stageRuntime, error) {
	timeIdx, err := paramIndex(p, "time")
	if err != nil {
		return nil, err
	}

	feedbackIdx, err := paramIndex(p, "feedback")
	if err != nil {
		return nil, err
	}

	lines, err := makeLines(p.maxChannels, spec.MaxDelaySeconds, p.sampleRate)
	if err != nil {
		return nil, err
	}

	return &delayStage{
		timeIdx:     timeIdx,
		feedbackIdx: feedbackIdx,
		sampleRate:  p.sampleRate,
		maxSeconds:  spec.MaxDelaySeconds,
		lines:       lines,
	}, nil
}

func (d *delayStage) update(snap []float64, _ int) {
	d.delaySamples = snap[d.timeIdx] * d.maxSeconds * d.sampleRate
	d.feedback = snap[d.feedbackIdx]
}

func (d *delayStage) processChannel(ch int, buf []float64) {
	line := d.lines[ch]
	for i, dry := range buf {
		delayed := line.ReadFractional(d.delaySamples)
		line.Write(core.FlushDenormals(dry + delayed*d.feedback*feedbackAttenuation))
		buf[i] = delayed
	}
}

func (d *delayStage) finishBlock(int) {}

func (d *delayStage) reset() {
	for _, line := range d.lines {
		line.Reset()
	}
}

// modDelayStage is the shared flanger/chorus engine: an LFO sweeps the delay
// time between manual and manual*(1+depth). The LFO phase is shared by all
// channels; stereo spread applies a read-only phase offset per channel, so no
// cross-channel synchronization is needed.
type modDelayStage struct {
	rateIdx     int
	depthIdx    int
	manualIdx   int
	feedbackIdx int
	waveformIdx int
	spreadIdx   int

	sampleRate float64
	lines      []*delay.Line

	phase float64

	phaseInc     float64
	baseSamples  float64
	depthAmount  float64
	feedback     float64
	waveform     int
	spreadCycles float64
}

func newModDelayStage(spec StageSpec, p *Processor) (stageRuntime, error) {
	m := &modDelayStage{sampleRate: p.sampleRate}

	for _, bind := range []struct {
		id  string
		dst *int
	}{
		{"rate", &m.rateIdx},
		{"depth", &m.depthIdx},
		{"manual", &m.manualIdx},
		{"feedback", &m.feedbackIdx},
		{"waveform", &m.waveformIdx},
		{"spread", &m.spreadIdx},
	} {
		idx, err := paramIndex(p, bind.id)
		if err != nil {
			return nil, err
		}

		*bind.dst = idx
	}

	lines, err := makeLines(p.maxChannels, spec.MaxDelaySeconds, p.sampleRate)
	if err != nil {
		return nil, err
	}

	m.lines = lines

	return m, nil
}

func (m *modDelayStage) update(snap []float64, _ int) {
	m.phaseInc = snap[m.rateIdx] / m.sampleRate
	m.baseSamples = snap[m.manualIdx] * 0.001 * m.sampleRate
	m.depthAmount = snap[m.depthIdx] / 100
	m.feedback = snap[m.feedbackIdx] / 100
	m.waveform = int(core.Clamp(math.Round(snap[m.waveformIdx]), 0, 3))
	m.spreadCycles = snap[m.spreadIdx] / 360
}

func (m *modDelayStage) processChannel(ch int, buf []float64) {
	line := m.lines[ch]
	phase := wrapPhase(m.phase + m.spreadCycles*float64(ch))

	for i, dry := range buf {
		mod := lfoValue(m.waveform, phase)

		delaySamples := m.baseSamples * (1 + m.depthAmount*mod)
		if delaySamples < 2 {
			delaySamples = 2
		}

		delayed := line.ReadFractionalHermite(delaySamples)
		line.Write(core.FlushDenormals(dry + delayed*m.feedback*feedbackAttenuation))
		buf[i] = delayed

		phase += m.phaseInc
		if phase >= 1 {
			phase--
		}
	}
}

func (m *modDelayStage) finishBlock(frames int) {
	m.phase = wrapPhase(m.phase + m.phaseInc*float64(frames))
}

func (m *modDelayStage) reset() {
	for _, line := range m.lines {
		line.Reset()
	}

	m.phase = 0
}

// eq3Stage runs a low shelf, peaking mid, and high shelf in series, followed
// by a smoothed master level.
type eq3Stage struct {
	lowGainIdx  int
	lowFreqIdx  int
	midGainIdx  int
	midFreqIdx  int
	midQIdx     int
	highGainIdx int
	highFreqIdx int
	masterIdx   int

	sampleRate float64

	low    []*biquad.Section
	mid    []*biquad.Section
	high   []*biquad.Section
	master float64
}

func newEQ3Stage(p *Processor) (stageRuntime, error) {
	e := &eq3Stage{sampleRate: p.sampleRate, master: 1}

	for _, bind := range []struct {
		id  string
		dst *int
	}{
		{"lowGain", &e.lowGainIdx},
		{"lowFreq", &e.lowFreqIdx},
		{"midGain", &e.midGainIdx},
		{"midFreq", &e.midFreqIdx},
		{"midQ", &e.midQIdx},
		{"highGain", &e.highGainIdx},
		{"highFreq", &e.highFreqIdx},
		{"master", &e.masterIdx},
	} {
		idx, err := paramIndex(p, bind.id)
		if err != nil {
			return nil, err
		}

		*bind.dst = idx
	}

	e.low = makeSections(p.maxChannels)
	e.mid = makeSections(p.maxChannels)
	e.high = makeSections(p.maxChannels)

	return e, nil
}

func (e *eq3Stage) update(snap []float64, _ int) {
	lowC := biquad.LowShelf(e.sampleRate, snap[e.lowFreqIdx], shelfQ, snap[e.lowGainIdx])
	midC := biquad.Peaking(e.sampleRate, snap[e.midFreqIdx], snap[e.midQIdx], snap[e.midGainIdx])
	highC := biquad.HighShelf(e.sampleRate, snap[e.highFreqIdx], shelfQ, snap[e.highGainIdx])

	for ch := range e.low {
		e.low[ch].SetCoefficients(lowC)
		e.mid[ch].SetCoefficients(midC)
		e.high[ch].SetCoefficients(highC)
	}

	e.master = snap[e.masterIdx]
}

func (e *eq3Stage) processChannel(ch int, buf []float64) {
	e.low[ch].ProcessBlock(buf)
	e.mid[ch].ProcessBlock(buf)
	e.high[ch].ProcessBlock(buf)

	for i := range buf {
		buf[i] *= e.master
	}
}

func (e *eq3Stage) finishBlock(int) {}

func (e *eq3Stage) reset() {
	for ch := range e.low {
		e.low[ch].Reset()
		e.mid[ch].Reset()
		e.high[ch].Reset()
	}
}

func makeLines(channels int, maxSeconds, sampleRate float64) ([]*delay.Line, error) {
	capacity := int(math.Ceil(maxSeconds*sampleRate)) + 4

	lines := make([]*delay.Line, channels)
	for i := range lines {
		line, err := delay.New(capacity)
		if err != nil {
			return nil, err
		}

		lines[i] = line
	}

	return lines, nil
}

func makeSections(channels int) []*biquad.Section {
	sections := make([]*biquad.Section, channels)
	for i := range sections {
		sections[i] = biquad.NewSection(biquad.Identity())
	}

	return sections
}
