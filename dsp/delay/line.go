// Package delay provides a fixed-capacity circular delay line with
// fractional-delay reads, the building block for echo and modulation effects.
package delay

import (
	"fmt"
	"math"

	"github.com/mottysisam/vaist-forge/dsp/interp"
)

// Line is a circular delay line with a fixed capacity. The capacity is chosen
// once for the maximum delay the effect supports at the prepared sample rate;
// reads clamp to [1, capacity-2] so a lookup can never touch the sample being
// written nor wrap the buffer twice.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line holding capacity samples.
func New(capacity int) (*Line, error) {
	if capacity < 4 {
		return nil, fmt.Errorf("delay capacity must be >= 4: %d", capacity)
	}
	return &Line{buffer: make([]float64, capacity)}, nil
}

// Capacity returns the internal buffer size.
func (d *Line) Capacity() int {
	return len(d.buffer)
}

// Write stores one sample and advances the write position.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. The delay is clamped to
// [1, capacity-1].
func (d *Line) Read(delaySamples int) float64 {
	size := len(d.buffer)
	if delaySamples < 1 {
		delaySamples = 1
	}
	if delaySamples > size-1 {
		delaySamples = size - 1
	}

	readPos := d.writePos - delaySamples
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay in samples with linear
// interpolation between the two surrounding buffer entries. The delay is
// clamped to [1, capacity-2] before use.
func (d *Line) ReadFractional(delaySamples float64) float64 {
	size := len(d.buffer)

	maxDelay := float64(size - 2)
	if delaySamples < 1 {
		delaySamples = 1
	}
	if delaySamples > maxDelay {
		delaySamples = maxDelay
	}

	whole := int(math.Floor(delaySamples))
	frac := delaySamples - float64(whole)

	return interp.Linear(frac, d.Read(whole), d.Read(whole+1))
}

// ReadFractionalHermite reads a fractional delay with 4-point cubic
// interpolation. It needs one extra sample of margin on each side, so the
// delay is clamped to [2, capacity-3]. Preferred for modulated delays, where
// linear interpolation audibly dulls the sweep.
func (d *Line) ReadFractionalHermite(delaySamples float64) float64 {
	size := len(d.buffer)

	maxDelay := float64(size - 3)
	if delaySamples < 2 {
		delaySamples = 2
	}
	if delaySamples > maxDelay {
		delaySamples = maxDelay
	}

	whole := int(math.Floor(delaySamples))
	frac := delaySamples - float64(whole)

	return interp.Hermite4(frac,
		d.Read(whole-1), d.Read(whole), d.Read(whole+1), d.Read(whole+2))
}

// Reset clears the buffer and rewinds the write position.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
