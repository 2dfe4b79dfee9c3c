package drv8825

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in       string
		expected Direction
		err      error
	}{
		{"forward", DirectionForward, nil},
		{"Forward", DirectionForward, nil},
		{"FORWARD", DirectionForward, nil},
		{"backward", DirectionBackward, nil},
		{"Backward", DirectionBackward, nil},
		{"bAcKwArD", DirectionBackward, nil},
		{"sideways", DirectionForward, ErrInvalidDirection},
		{"", DirectionForward, ErrInvalidDirection},
		{" forward", DirectionForward, ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDirection(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestPolarity(t *testing.T) {
	assert.False(t, DirectionForward.Level())
	assert.True(t, DirectionBackward.Level())
	assert.False(t, Enabled.Level())
	assert.True(t, Disabled.Level())

	for _, d := range []Direction{DirectionForward, DirectionBackward} {
		assert.Equal(t, d, DirectionFromLevel(d.Level()))
	}
	for _, e := range []EnableState{Enabled, Disabled} {
		assert.Equal(t, e, EnableStateFromLevel(e.Level()))
	}
}

func TestErrorHierarchy(t *testing.T) {
	for _, err := range []error{ErrInvalidDirection, ErrInvalidStepCount, ErrDuplicatePin} {
		assert.True(t, errors.Is(err, ErrInvalidArgument), err.Error())
	}
	assert.False(t, errors.Is(ErrInvalidDirection, ErrInvalidStepCount))
}
