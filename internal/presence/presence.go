// Package presence holds the dense product-presence set of one rank.
//
// A Bitmap stores one byte flag per value in [0, maxValue]. Flags are
// write-once-true: they are set by Mark or Or and never cleared. The backing
// memory is reserved from a resource.Controller before allocation and returned
// by Close, so a run that cannot afford its bitmaps fails up front.
package presence

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/TyllerAllen/CP431-FinalProject/internal/conv"
	"github.com/TyllerAllen/CP431-FinalProject/internal/resource"
)

var (
	// ErrInvalidSize is returned when a bitmap size cannot be addressed.
	ErrInvalidSize = errors.New("presence: invalid bitmap size")

	// ErrOutOfRange is returned when a merge window exceeds the bitmap.
	ErrOutOfRange = errors.New("presence: merge window out of range")

	// ErrClosed is returned when a closed bitmap is used.
	ErrClosed = errors.New("presence: bitmap closed")
)

// Bitmap is a dense flag array over [0, maxValue].
type Bitmap struct {
	flags []byte
	rc    *resource.Controller
}

// New reserves and allocates a bitmap covering [0, maxValue].
func New(rc *resource.Controller, maxValue uint64) (*Bitmap, error) {
	if maxValue == math.MaxUint64 {
		return nil, fmt.Errorf("%w: max value %d", ErrInvalidSize, maxValue)
	}
	size, err := conv.Uint64ToInt(maxValue + 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}
	if err := rc.AcquireMemory(int64(size)); err != nil {
		return nil, fmt.Errorf("allocate presence bitmap of %d bytes: %w", size, err)
	}
	return &Bitmap{flags: make([]byte, size), rc: rc}, nil
}

// Len returns the number of flags (maxValue + 1).
func (b *Bitmap) Len() int {
	return len(b.flags)
}

// Mark sets the flag for v. Values beyond the bitmap are ignored.
func (b *Bitmap) Mark(v uint64) {
	if v < uint64(len(b.flags)) {
		b.flags[v] = 1
	}
}

// Has reports whether v is present.
func (b *Bitmap) Has(v uint64) bool {
	return v < uint64(len(b.flags)) && b.flags[v] != 0
}

// Bytes returns the backing flags. The slice is valid until Close.
func (b *Bitmap) Bytes() []byte {
	return b.flags
}

// Or merges src into the flags starting at off, byte by byte. A flag is
// present when its byte is nonzero, so OR never clears one.
func (b *Bitmap) Or(off int, src []byte) error {
	if b.flags == nil {
		return ErrClosed
	}
	if off < 0 || off > len(b.flags) || len(src) > len(b.flags)-off {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfRange, off, off+len(src), len(b.flags))
	}
	dst := b.flags[off : off+len(src)]
	for i, v := range src {
		dst[i] |= v
	}
	return nil
}

// Count returns the number of set flags in [1, maxValue]. Index 0 is not a product.
func (b *Bitmap) Count() uint64 {
	if len(b.flags) < 2 {
		return 0
	}
	body := b.flags[1:]
	return uint64(len(body) - bytes.Count(body, []byte{0}))
}

// Close releases the flags and their memory reservation. It is idempotent.
func (b *Bitmap) Close() error {
	if b.flags == nil {
		return nil
	}
	b.rc.ReleaseMemory(int64(len(b.flags)))
	b.flags = nil
	return nil
}
