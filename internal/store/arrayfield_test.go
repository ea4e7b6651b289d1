package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayField_RoundTripsUint32(t *testing.T) {
	raw, err := encodeArrayField([]uint32{7, 42, 100})
	require.NoError(t, err)

	got, err := parseArrayField[uint32](raw)
	require.NoError(t, err)
	assert.Equal(t, []uint32{7, 42, 100}, got)
}

func TestArrayField_EmptyInputYieldsNil(t *testing.T) {
	got, err := parseArrayField[string](nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArrayField_NilSliceEncodesAsEmptyArray(t *testing.T) {
	raw, err := encodeArrayField[string](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestVector_RoundTripsThroughBlobEncoding(t *testing.T) {
	v := []float32{0.1, -0.2, 0.3, 1.0}
	blob := encodeVector(v)
	assert.Equal(t, v, decodeVector(blob))
}

func TestVector_EmptyRoundTripsToNil(t *testing.T) {
	assert.Nil(t, decodeVector(encodeVector(nil)))
}

func TestValidateDimension_RejectsWrongLength(t *testing.T) {
	err := validateDimension(make([]float32, 10))
	require.Error(t, err)
	var mismatch ErrDimensionMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, Dimensions, mismatch.Expected)
	assert.Equal(t, 10, mismatch.Got)
}

func TestValidateDimension_AllowsAbsentVector(t *testing.T) {
	assert.NoError(t, validateDimension(nil))
}
