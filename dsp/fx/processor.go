package fx

import (
	"fmt"
	"math"

	"github.com/mottysisam/vaist-forge/dsp/core"
	"github.com/mottysisam/vaist-forge/dsp/param"
	"github.com/mottysisam/vaist-forge/dsp/smooth"
)

const (
	defaultMaxChannels  = 2
	defaultMaxBlockSize = 2048
)

// Option configures a Processor at construction time.
type Option func(*Processor) error

// WithMaxChannels sets the channel count the processor allocates state for.
func WithMaxChannels(n int) Option {
	return func(p *Processor) error {
		if n < 1 {
			return fmt.Errorf("fx: max channels must be at least 1: %d", n)
		}

		p.maxChannels = n
		return nil
	}
}

// WithMaxBlockSize sets the largest sub-block processed at once. Larger host
// buffers are split so parameter smoothing and coefficient updates still run
// at a bounded interval.
func WithMaxBlockSize(n int) Option {
	return func(p *Processor) error {
		if n < 1 {
			return fmt.Errorf("fx: max block size must be at least 1: %d", n)
		}

		p.maxBlockSize = n
		return nil
	}
}

// Processor drives one effect through the prepare/reset/process lifecycle.
// Parameter writes may come from a different goroutine than Process; all other
// methods belong to the audio owner.
type Processor struct {
	desc  Descriptor
	store *param.Store

	maxChannels  int
	maxBlockSize int

	sampleRate float64
	prepared   bool

	stages    []stageRuntime
	smoothers []*smooth.Smoother
	mixIdx    int

	snap []float64
	dry  [][]float64
}

// New builds a processor for the given effect descriptor. The processor is
// not usable for audio until Prepare succeeds.
func New(desc Descriptor, opts ...Option) (*Processor, error) {
	store, err := param.NewStore(desc.Params)
	if err != nil {
		return nil, fmt.Errorf("fx: descriptor %q: %w", desc.Name, err)
	}

	p := &Processor{
		desc:         desc,
		store:        store,
		maxChannels:  defaultMaxChannels,
		maxBlockSize: defaultMaxBlockSize,
		mixIdx:       -1,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if desc.MixParam != "" {
		p.mixIdx = store.Index(desc.MixParam)
		if p.mixIdx < 0 {
			return nil, fmt.Errorf("fx: descriptor %q names unknown mix param %q", desc.Name, desc.MixParam)
		}
	}

	p.smoothers = make([]*smooth.Smoother, store.Count())
	for i, d := range store.Descs() {
		if d.SmoothingMs > 0 {
			p.smoothers[i] = smooth.New(d.SmoothingMs)
		}
	}

	return p, nil
}

// Name returns the effect name from the descriptor.
func (p *Processor) Name() string {
	return p.desc.Name
}

// Store exposes the parameter store, for hosts that resolve indices up front.
func (p *Processor) Store() *param.Store {
	return p.store
}

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

// Prepare sizes all processing state for sampleRate and clears it. It may be
// called again with a new rate; delay lines and filters are rebuilt. Parameter
// values survive across Prepare calls.
func (p *Processor) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("fx: sample rate must be positive: %f", sampleRate)
	}

	p.sampleRate = sampleRate

	stages := make([]stageRuntime, len(p.desc.Stages))
	for i, spec := range p.desc.Stages {
		stage, err := buildStage(spec, p)
		if err != nil {
			p.prepared = false
			return err
		}

		stages[i] = stage
	}

	p.stages = stages
	p.snap = core.EnsureLen(p.snap, p.store.Count())

	p.dry = ensureChannels(p.dry, p.maxChannels, p.maxBlockSize)

	p.snapSmoothers()
	p.prepared = true

	return nil
}

// Reset clears all audio state (delay lines, filter memory, LFO phase) while
// keeping parameter values and the prepared configuration.
func (p *Processor) Reset() {
	for _, stage := range p.stages {
		stage.reset()
	}

	core.ZeroAll(p.dry)
	p.snapSmoothers()
}

// Destroy releases processing state. The processor returns ErrNotPrepared
// from Process until Prepare is called again.
func (p *Processor) Destroy() {
	p.prepared = false
	p.stages = nil
	p.dry = nil
	p.snap = nil
}

// SetParameter stores a new value for id, clamped to its declared range.
func (p *Processor) SetParameter(id string, value float64) error {
	return p.store.Set(id, value)
}

// Parameter returns the last stored raw value for id.
func (p *Processor) Parameter(id string) (float64, error) {
	return p.store.Get(id)
}

// SaveState serializes the current parameter values.
func (p *Processor) SaveState() []byte {
	return p.store.Serialize()
}

// LoadState applies a previously saved state blob and returns the number of
// parameter values applied.
func (p *Processor) LoadState(blob []byte) int {
	return p.store.Deserialize(blob)
}

// Process runs frames samples through the effect in place, one []float64 per
// channel. Oversized host blocks are split into sub-blocks of at most the
// configured max block size. The output is always finite and within ±1.
func (p *Processor) Process(buffers [][]float64, frames int) error {
	if !p.prepared {
		return ErrNotPrepared
	}

	if frames < 0 {
		return fmt.Errorf("fx: frame count must not be negative: %d", frames)
	}

	if frames == 0 {
		return nil
	}

	if len(buffers) == 0 || len(buffers) > p.maxChannels {
		return fmt.Errorf("fx: channel count must be in [1, %d]: %d", p.maxChannels, len(buffers))
	}

	for ch, buf := range buffers {
		if len(buf) < frames {
			return fmt.Errorf("fx: channel %d holds %d samples, need %d", ch, len(buf), frames)
		}
	}

	for offset := 0; offset < frames; offset += p.maxBlockSize {
		chunk := frames - offset
		if chunk > p.maxBlockSize {
			chunk = p.maxBlockSize
		}

		p.processChunk(buffers, offset, chunk)
	}

	return nil
}

// processChunk handles one sub-block: snapshot parameters once, advance the
// smoothers, run every stage, blend against the dry copy, and sanitize.
func (p *Processor) processChunk(buffers [][]float64, offset, chunk int) {
	p.store.Snapshot(p.snap)

	for i, sm := range p.smoothers {
		if sm == nil {
			continue
		}

		sm.SetTarget(p.snap[i])
		p.snap[i] = sm.NextBlock(p.sampleRate, chunk)
	}

	mixing := p.mixIdx >= 0
	if mixing {
		for ch := range buffers {
			copy(p.dry[ch][:chunk], buffers[ch][offset:offset+chunk])
		}
	}

	for _, stage := range p.stages {
		stage.update(p.snap, chunk)

		for ch := range buffers {
			stage.processChannel(ch, buffers[ch][offset:offset+chunk])
		}

		stage.finishBlock(chunk)
	}

	if mixing {
		mix := core.Clamp(p.snap[p.mixIdx]*p.desc.MixScale, 0, 1)
		for ch := range buffers {
			out := buffers[ch][offset : offset+chunk]
			dry := p.dry[ch][:chunk]

			for i := range out {
				out[i] = dry[i]*(1-mix) + out[i]*mix
			}
		}
	}

	for ch := range buffers {
		core.Sanitize(buffers[ch][offset : offset+chunk])
	}
}

// snapSmoothers aligns every smoother with the current raw parameter values
// so processing never starts mid-glide.
func (p *Processor) snapSmoothers() {
	for i, sm := range p.smoothers {
		if sm != nil {
			sm.SnapTo(p.store.GetIndex(i))
		}
	}
}

func ensureChannels(bufs [][]float64, channels, frames int) [][]float64 {
	if len(bufs) != channels {
		bufs = make([][]float64, channels)
	}

	for i := range bufs {
		bufs[i] = core.EnsureLen(bufs[i], frames)
		core.Zero(bufs[i])
	}

	return bufs
}
