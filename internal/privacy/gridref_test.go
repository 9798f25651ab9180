package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/civic_response_system/internal/apperr"
)

func TestEncode_SameCellForNearbyPoints(t *testing.T) {
	enc := NewGridEncoder(0.01)

	a, err := enc.Encode(55.75123, 37.61789)
	require.NoError(t, err)
	b, err := enc.Encode(55.75999, 37.61001)
	require.NoError(t, err)

	assert.Equal(t, "G0.0100:N5575:E3761", a)
	assert.Equal(t, a, b)
}

func TestEncode_Hemispheres(t *testing.T) {
	enc := NewGridEncoder(1)

	ref, err := enc.Encode(-33.9, -70.6)

	require.NoError(t, err)
	assert.Equal(t, "G1.0000:S33:W70", ref)
}

func TestEncode_OutOfRange(t *testing.T) {
	enc := NewGridEncoder(0.01)

	_, err := enc.Encode(91, 0)
	assert.True(t, apperr.IsValidation(err))

	_, err = enc.Encode(0, -181)
	assert.True(t, apperr.IsValidation(err))
}

func TestNewGridEncoder_DefaultCell(t *testing.T) {
	assert.Equal(t, DefaultCellDegrees, NewGridEncoder(0).CellDegrees())
	assert.Equal(t, DefaultCellDegrees, NewGridEncoder(-5).CellDegrees())
}
