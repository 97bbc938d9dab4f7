package param

import (
	"encoding/binary"
	"math"
)

// Serialized state is a headerless sequence of little-endian 32-bit floats,
// one per parameter in declaration order. Callers are expected to know the
// parameter count and order out of band; there is no version tag.

const valueSize = 4

// Serialize encodes all current parameter values. The result is exactly
// 4*Count() bytes.
func (s *Store) Serialize() []byte {
	out := make([]byte, valueSize*len(s.values))
	for i := range s.values {
		bits := math.Float32bits(float32(s.GetIndex(i)))
		binary.LittleEndian.PutUint32(out[i*valueSize:], bits)
	}

	return out
}

// Deserialize applies a previously serialized blob. Each decoded value is
// clamped through the normal Set path. Incorrectly sized blobs are handled
// gracefully: only complete 4-byte values are decoded, trailing bytes are
// ignored, and surplus values beyond the parameter count are dropped. The
// number of applied values is returned.
func (s *Store) Deserialize(blob []byte) int {
	n := len(blob) / valueSize
	if n > len(s.values) {
		n = len(s.values)
	}

	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(blob[i*valueSize:])
		s.SetIndex(i, float64(math.Float32frombits(bits)))
	}

	return n
}
