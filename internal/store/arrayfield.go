package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// parseArrayField accepts a JSON-encoded array column (the columnar rows'
// on-disk representation for id lists and string lists) and returns a typed
// slice. §9: "Model them as typed enums/variants per column with a
// parseArrayField<T> that accepts native array, columnar vector, or JSON
// string and returns a typed sequence. Never pass raw rows out of the
// infrastructure layer." This store only ever persists the JSON-string
// form, so the native/columnar-vector branches collapse to a single path,
// but the function stays generic over T so callers never hand-roll
// unmarshalling per column.
func parseArrayField[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse array field: %w", err)
	}
	return out, nil
}

func encodeArrayField[T any](vals []T) ([]byte, error) {
	if vals == nil {
		vals = []T{}
	}
	return json.Marshal(vals)
}

// encodeVector packs a []float32 into a little-endian byte blob for BLOB
// storage; decodeVector is its inverse. nil/empty vectors round-trip as nil.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) []float32 {
	if len(raw) == 0 {
		return nil
	}
	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return v
}

// validateDimension enforces §3's fixed 384-dim invariant for any
// non-empty vector handed to the store for write.
func validateDimension(v []float32) error {
	if len(v) == 0 {
		return nil // absent vector is allowed (degraded/unembedded row)
	}
	if len(v) != Dimensions {
		return ErrDimensionMismatch{Expected: Dimensions, Got: len(v)}
	}
	return nil
}
