package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(0)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = Uint64ToInt(math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = Uint64ToInt(math.MaxInt + 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestIntToUint32(t *testing.T) {
	tests := []struct {
		in      int
		want    uint32
		wantErr bool
	}{
		{in: 0, want: 0},
		{in: 30000, want: 30000},
		{in: math.MaxInt32, want: math.MaxInt32},
		{in: -1, wantErr: true},
	}
	for _, tt := range tests {
		got, err := IntToUint32(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrOverflow, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestIntToUint32_TooLarge(t *testing.T) {
	if math.MaxInt == math.MaxInt32 {
		t.Skip("int is 32 bits")
	}
	big := uint64(math.MaxUint32) + 1
	_, err := IntToUint32(int(big))
	assert.ErrorIs(t, err, ErrOverflow)
}
