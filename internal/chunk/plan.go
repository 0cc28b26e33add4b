package chunk

import (
	"errors"
	"fmt"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
)

// DefaultSize is the default chunk size in bytes.
const DefaultSize = 30000

// MaxSize is the largest supported chunk size.
const MaxSize = 1 << 30

// ErrInvalidPlan is returned for a negative length or a chunk size outside [1, MaxSize].
var ErrInvalidPlan = errors.New("chunk: invalid plan")

// Plan describes how a buffer of Len bytes is cut into chunks of Size bytes.
type Plan struct {
	length int
	size   int
}

// NewPlan validates and returns a plan.
func NewPlan(length, size int) (Plan, error) {
	if length < 0 {
		return Plan{}, fmt.Errorf("%w: length %d", ErrInvalidPlan, length)
	}
	if size < 1 || size > MaxSize {
		return Plan{}, fmt.Errorf("%w: chunk size %d", ErrInvalidPlan, size)
	}
	return Plan{length: length, size: size}, nil
}

// Len returns the buffer length.
func (p Plan) Len() int { return p.length }

// Size returns the chunk size.
func (p Plan) Size() int { return p.size }

// Full returns the number of full ARRAY chunks.
func (p Plan) Full() int { return p.length / p.size }

// Remainder returns the length of the LAST chunk.
func (p Plan) Remainder() int { return p.length % p.size }

// Count returns the number of frames in a stream, LAST included.
func (p Plan) Count() int { return p.Full() + 1 }

// Offset returns the buffer offset of chunk seq.
func (p Plan) Offset(seq int) int { return seq * p.size }

// ChunkLen returns the length of chunk seq.
func (p Plan) ChunkLen(seq int) int {
	if seq < p.Full() {
		return p.size
	}
	return p.Remainder()
}

// Tag returns the tag chunk seq travels with.
func (p Plan) Tag(seq int) comm.Tag {
	if seq < p.Full() {
		return comm.TagArray
	}
	return comm.TagLast
}

// Merger is an OR-merge target such as a presence bitmap.
type Merger interface {
	Or(off int, src []byte) error
}

// Buffer is a plain byte slice Merger.
type Buffer []byte

// Or implements Merger with a bytewise OR.
func (b Buffer) Or(off int, src []byte) error {
	if off < 0 || off > len(b) || len(src) > len(b)-off {
		return fmt.Errorf("%w: merge [%d, %d) into %d bytes", ErrInvalidPlan, off, off+len(src), len(b))
	}
	dst := b[off : off+len(src)]
	for i, v := range src {
		dst[i] |= v
	}
	return nil
}

// Split cuts buf into Full() views of size bytes and one final view of the remainder.
func Split(buf []byte, size int) ([][]byte, error) {
	p, err := NewPlan(len(buf), size)
	if err != nil {
		return nil, err
	}
	chunks := make([][]byte, 0, p.Count())
	for seq := 0; seq < p.Count(); seq++ {
		off := p.Offset(seq)
		chunks = append(chunks, buf[off:off+p.ChunkLen(seq)])
	}
	return chunks, nil
}

// Merge ORs chunks produced by Split back into dst at their offsets.
func Merge(dst Merger, size int, chunks [][]byte) error {
	for seq, c := range chunks {
		if err := dst.Or(seq*size, c); err != nil {
			return err
		}
	}
	return nil
}
