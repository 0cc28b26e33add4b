package triangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walk reaches offset by repeated Advance from (1, 1).
func walk(n, offset uint64) Cursor {
	e := New(n)
	for k := uint64(0); k < offset; k++ {
		e.Advance()
	}
	return e.Cursor()
}

func TestAdvance_CanonicalOrder(t *testing.T) {
	e := New(3)
	var got []Cursor
	for !e.Done() {
		got = append(got, e.Cursor())
		e.Advance()
	}

	want := []Cursor{
		{1, 1}, {2, 1}, {3, 1},
		{2, 2}, {3, 2},
		{3, 3},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, Cursor{4, 4}, e.Cursor())
}

func TestPosition_MatchesWalk(t *testing.T) {
	for n := uint64(1); n <= 30; n++ {
		total := n * (n + 1) / 2
		for off := uint64(0); off <= total; off++ {
			got, err := Position(n, off)
			require.NoError(t, err)
			require.Equal(t, walk(n, off), got, "n=%d offset=%d", n, off)
		}
	}
}

func TestOffset_InvertsPosition(t *testing.T) {
	for n := uint64(1); n <= 30; n++ {
		total := n * (n + 1) / 2
		for off := uint64(0); off <= total; off++ {
			c, err := Position(n, off)
			require.NoError(t, err)
			back, err := Offset(n, c)
			require.NoError(t, err)
			require.Equal(t, off, back, "n=%d cursor=%s", n, c)
		}
	}
}

func TestPosition_LargeN(t *testing.T) {
	const n = 3_000_000_000
	total := Triangular(n)

	last, err := Position(n, total-1)
	require.NoError(t, err)
	assert.Equal(t, Cursor{n, n}, last)

	first, err := Position(n, 0)
	require.NoError(t, err)
	assert.Equal(t, Cursor{1, 1}, first)

	// Second column starts after the n cells of the first.
	c, err := Position(n, n)
	require.NoError(t, err)
	assert.Equal(t, Cursor{2, 2}, c)

	for _, off := range []uint64{1, n - 1, total / 2, total - 2, total - 3} {
		c, err := Position(n, off)
		require.NoError(t, err)
		back, err := Offset(n, c)
		require.NoError(t, err)
		assert.Equal(t, off, back)
	}
}

func TestPosition_OutOfDomain(t *testing.T) {
	_, err := Position(3, 7)
	assert.ErrorIs(t, err, ErrOutOfDomain)

	e := New(3)
	assert.ErrorIs(t, e.Seek(100), ErrOutOfDomain)
	assert.Equal(t, Cursor{1, 1}, e.Cursor())
}

func TestOffset_OutOfDomain(t *testing.T) {
	for _, c := range []Cursor{{1, 2}, {0, 0}, {4, 1}, {4, 3}} {
		_, err := Offset(3, c)
		assert.ErrorIs(t, err, ErrOutOfDomain, "cursor %s", c)
	}
}

func TestSeek_ThenAdvance(t *testing.T) {
	e := New(4)
	require.NoError(t, e.Seek(3))
	assert.Equal(t, Cursor{4, 1}, e.Cursor())
	e.Advance()
	assert.Equal(t, Cursor{2, 2}, e.Cursor())
	assert.Equal(t, uint64(4), e.Cursor().Product())
	assert.False(t, e.Done())

	require.NoError(t, e.Seek(10))
	assert.True(t, e.Done())
}

func TestTriangular(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{1, 1},
		{2, 3},
		{3, 6},
		{4, 10},
		{10, 55},
		{3037000499, 3037000499 * (3037000500 / 2)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Triangular(tt.n), "n=%d", tt.n)
	}
}
