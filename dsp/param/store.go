// Package param implements the parameter model shared by all effect
// processors: declared ranges and defaults, clamping writes that are safe to
// issue from a control thread while audio is running, block-consistent
// snapshots, and the persisted binary state format.
package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Desc declares a single parameter: its stable identifier, value range,
// default, and optional smoothing time constant. A SmoothingMs of zero means
// the raw value is used directly at block rate.
type Desc struct {
	ID          string
	Min         float64
	Max         float64
	Default     float64
	SmoothingMs float64
}

// Store owns the current values for a fixed set of parameters declared at
// construction time. Writes clamp to the declared range and are atomic, so a
// control thread may call Set concurrently with the audio thread taking
// snapshots; no lock is ever taken on either side.
type Store struct {
	descs  []Desc
	index  map[string]int
	values []atomic.Uint64
}

// NewStore creates a store for the given parameter declarations, with every
// value set to its default. Declaration order is significant: it defines both
// snapshot indices and the persisted state layout.
func NewStore(descs []Desc) (*Store, error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("param store needs at least one parameter")
	}

	s := &Store{
		descs:  make([]Desc, len(descs)),
		index:  make(map[string]int, len(descs)),
		values: make([]atomic.Uint64, len(descs)),
	}

	for i, d := range descs {
		if d.ID == "" {
			return nil, fmt.Errorf("param %d has an empty id", i)
		}

		if _, exists := s.index[d.ID]; exists {
			return nil, fmt.Errorf("duplicate param id: %s", d.ID)
		}

		if d.Min > d.Max || math.IsNaN(d.Min) || math.IsNaN(d.Max) ||
			math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) {
			return nil, fmt.Errorf("param %s has invalid range [%f, %f]", d.ID, d.Min, d.Max)
		}

		d.Default = clampToDesc(d, d.Default)
		s.descs[i] = d
		s.index[d.ID] = i
		s.values[i].Store(math.Float64bits(d.Default))
	}

	return s, nil
}

// Count returns the number of declared parameters.
func (s *Store) Count() int {
	return len(s.descs)
}

// Descs returns a copy of the parameter declarations in declaration order.
func (s *Store) Descs() []Desc {
	out := make([]Desc, len(s.descs))
	copy(out, s.descs)
	return out
}

// Index returns the snapshot index for id, or -1 if unknown.
func (s *Store) Index(id string) int {
	i, ok := s.index[id]
	if !ok {
		return -1
	}
	return i
}

// Set stores a new value for id, clamped to the declared range. Unknown ids
// are ignored and reported. Non-finite values fall back to the default, since
// a NaN must never reach the audio path.
func (s *Store) Set(id string, value float64) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("unknown param id: %s", id)
	}

	s.SetIndex(i, value)
	return nil
}

// SetIndex is the allocation-free variant of Set for resolved indices.
// Out-of-range indices are ignored.
func (s *Store) SetIndex(i int, value float64) {
	if i < 0 || i >= len(s.descs) {
		return
	}

	d := s.descs[i]
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = d.Default
	}

	s.values[i].Store(math.Float64bits(clampToDesc(d, value)))
}

// Get returns the last stored raw value for id (unsmoothed).
func (s *Store) Get(id string) (float64, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, fmt.Errorf("unknown param id: %s", id)
	}

	return s.GetIndex(i), nil
}

// GetIndex returns the value at a resolved index, or 0 when out of range.
func (s *Store) GetIndex(i int) float64 {
	if i < 0 || i >= len(s.values) {
		return 0
	}

	return math.Float64frombits(s.values[i].Load())
}

// Snapshot copies all current values into dst in declaration order and
// returns the number of values written. It performs no allocation and is
// called once at the start of every processed block, so every sample in a
// block observes the same parameter set.
func (s *Store) Snapshot(dst []float64) int {
	n := len(s.values)
	if len(dst) < n {
		n = len(dst)
	}

	for i := 0; i < n; i++ {
		dst[i] = math.Float64frombits(s.values[i].Load())
	}

	return n
}

// ResetDefaults restores every parameter to its declared default.
func (s *Store) ResetDefaults() {
	for i, d := range s.descs {
		s.values[i].Store(math.Float64bits(d.Default))
	}
}

func clampToDesc(d Desc, value float64) float64 {
	if value < d.Min {
		return d.Min
	}

	if value > d.Max {
		return d.Max
	}

	return value
}
