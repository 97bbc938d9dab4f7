// Package smooth implements exponential parameter smoothing at block rate,
// used to avoid audible steps (zipper noise) when a control surface moves a
// parameter while audio is running.
package smooth

import "math"

// DefaultTimeConstantMs is the smoothing time constant applied when a
// parameter requests smoothing without naming one.
const DefaultTimeConstantMs = 20.0

// Smoother approaches a target value exponentially:
//
//	current += coeff * (target - current)
//
// with coeff derived from the sample rate, the block length, and the time
// constant. Since coeff always lies in (0, 1], the current value converges
// monotonically and never overshoots.
type Smoother struct {
	current    float64
	target     float64
	timeConstS float64
}

// New returns a smoother with the given time constant in milliseconds.
// A non-positive time constant makes the smoother snap instantly.
func New(timeConstantMs float64) *Smoother {
	s := &Smoother{}
	s.SetTimeConstantMs(timeConstantMs)
	return s
}

// SetTimeConstantMs updates the time constant in milliseconds.
func (s *Smoother) SetTimeConstantMs(ms float64) {
	if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		ms = 0
	}

	s.timeConstS = ms * 0.001
}

// SetTarget updates the value the smoother approaches.
func (s *Smoother) SetTarget(target float64) {
	s.target = target
}

// SnapTo forces both current and target to value, skipping the ramp.
// Used at prepare/reset so playback never starts mid-glide.
func (s *Smoother) SnapTo(value float64) {
	s.current = value
	s.target = value
}

// NextBlock advances the smoother by one block of frames at sampleRate and
// returns the new current value, which holds for the whole block.
func (s *Smoother) NextBlock(sampleRate float64, frames int) float64 {
	if s.timeConstS <= 0 || sampleRate <= 0 || frames <= 0 {
		s.current = s.target
		return s.current
	}

	coeff := 1 - math.Exp(-float64(frames)/(s.timeConstS*sampleRate))
	s.current += coeff * (s.target - s.current)

	return s.current
}

// Current returns the present smoothed value without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// Target returns the value the smoother is approaching.
func (s *Smoother) Target() float64 {
	return s.target
}
