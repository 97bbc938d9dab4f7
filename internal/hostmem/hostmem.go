// Package hostmem adapts a host-owned linear float32 sample memory to the
// float64 channel buffers the processing core works on. Every region is
// bounds-checked before any copy, so a hostile or buggy host can never make
// the core read or write outside the shared memory.
package hostmem

import (
	"errors"
	"fmt"
)

var (
	// ErrRegionBounds reports a region that does not fit the linear memory.
	ErrRegionBounds = errors.New("hostmem: region outside linear memory")
	// ErrFrameCount reports a non-positive frame or channel count.
	ErrFrameCount = errors.New("hostmem: invalid frame or channel count")
)

// Memory wraps a linear float32 sample buffer shared with a host.
type Memory struct {
	data []float32
}

// New allocates a linear memory of the given sample capacity.
func New(samples int) (*Memory, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("hostmem: capacity must be > 0: %d", samples)
	}

	return &Memory{data: make([]float32, samples)}, nil
}

// Wrap adapts an existing float32 slice without copying.
func Wrap(data []float32) *Memory {
	return &Memory{data: data}
}

// Len returns the linear memory capacity in samples.
func (m *Memory) Len() int {
	return len(m.data)
}

// Raw exposes the underlying slice, for hosts that fill it directly.
func (m *Memory) Raw() []float32 {
	return m.data
}

// Region is a validated planar view into the memory: channels channels of
// frames samples each, starting at offset. Channel data is laid out
// contiguously, one channel after another.
type Region struct {
	mem      *Memory
	offset   int
	frames   int
	channels int
}

// Region validates and returns a planar view. The whole span
// [offset, offset+frames*channels) must lie inside the memory.
func (m *Memory) Region(offset, frames, channels int) (Region, error) {
	if frames <= 0 || channels <= 0 {
		return Region{}, fmt.Errorf("%w: frames=%d channels=%d", ErrFrameCount, frames, channels)
	}

	if offset < 0 {
		return Region{}, fmt.Errorf("%w: offset=%d", ErrRegionBounds, offset)
	}

	span := frames * channels
	if span/channels != frames || offset+span < offset || offset+span > len(m.data) {
		return Region{}, fmt.Errorf("%w: offset=%d frames=%d channels=%d capacity=%d",
			ErrRegionBounds, offset, frames, channels, len(m.data))
	}

	return Region{mem: m, offset: offset, frames: frames, channels: channels}, nil
}

// Frames returns the region length in frames.
func (r Region) Frames() int {
	return r.frames
}

// Channels returns the region channel count.
func (r Region) Channels() int {
	return r.channels
}

// Channel returns the float32 samples of one channel.
func (r Region) Channel(ch int) []float32 {
	start := r.offset + ch*r.frames
	return r.mem.data[start : start+r.frames]
}

// CopyOut widens the region into float64 channel buffers. dst must hold one
// buffer of at least Frames samples per channel.
func (r Region) CopyOut(dst [][]float64) error {
	if err := r.checkBuffers(len(dst), dst); err != nil {
		return err
	}

	for ch := 0; ch < r.channels; ch++ {
		src := r.Channel(ch)
		for i, v := range src {
			dst[ch][i] = float64(v)
		}
	}

	return nil
}

// CopyIn narrows float64 channel buffers back into the region.
func (r Region) CopyIn(src [][]float64) error {
	if err := r.checkBuffers(len(src), src); err != nil {
		return err
	}

	for ch := 0; ch < r.channels; ch++ {
		dst := r.Channel(ch)
		for i := range dst {
			dst[i] = float32(src[ch][i])
		}
	}

	return nil
}

func (r Region) checkBuffers(n int, bufs [][]float64) error {
	if n != r.channels {
		return fmt.Errorf("%w: have %d buffers, region has %d channels", ErrFrameCount, n, r.channels)
	}

	for ch, buf := range bufs {
		if len(buf) < r.frames {
			return fmt.Errorf("%w: channel %d holds %d samples, region has %d frames",
				ErrFrameCount, ch, len(buf), r.frames)
		}
	}

	return nil
}
