package feature

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MarshalBinary packs the vector into little-endian float64 bytes for
// BLOB storage.
func (v Vector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf, nil
}

// UnmarshalVector converts a stored BLOB back into a Vector.
func UnmarshalVector(b []byte) (Vector, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("feature blob length %d is not a multiple of 8", len(b))
	}
	v := make(Vector, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
