package chunk

import (
	"context"
	"errors"
	"fmt"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
	"github.com/TyllerAllen/CP431-FinalProject/internal/resource"
)

// Receiver drains chunk streams into a Merger, one source at a time.
type Receiver struct {
	c       comm.Communicator
	plan    Plan
	rc      *resource.Controller
	wire    []byte
	scratch []byte
	held    int64
}

// NewReceiver reserves one wire buffer and one scratch buffer for plan.
// Close releases them.
func NewReceiver(c comm.Communicator, plan Plan, rc *resource.Controller) (*Receiver, error) {
	held := int64(HeaderSize + 2*plan.Size())
	if err := rc.AcquireMemory(held); err != nil {
		return nil, fmt.Errorf("allocate receive buffers: %w", err)
	}
	return &Receiver{
		c:       c,
		plan:    plan,
		rc:      rc,
		wire:    make([]byte, HeaderSize+plan.Size()),
		scratch: make([]byte, plan.Size()),
		held:    held,
	}, nil
}

// Drain receives the complete stream of src and ORs every chunk into dst at
// its offset. Chunks are merged as they arrive.
func (r *Receiver) Drain(ctx context.Context, src int, dst Merger) (Stats, error) {
	var st Stats
	for seq := 0; seq < r.plan.Count(); seq++ {
		env, err := r.c.Recv(ctx, src, r.wire)
		if err != nil {
			if errors.Is(err, comm.ErrTruncated) {
				return st, violation(src, seq, err, "oversized frame of %d bytes", env.Len)
			}
			return st, fmt.Errorf("receive chunk %d from rank %d: %w", seq, src, err)
		}
		if env.Source != src {
			return st, violation(src, seq, nil, "frame from rank %d", env.Source)
		}
		if want := r.plan.Tag(seq); env.Tag != want {
			return st, violation(src, seq, nil, "tag %s, want %s", env.Tag, want)
		}

		frame := r.wire[:env.Len]
		h, err := parseHeader(frame)
		if err != nil {
			return st, violation(src, seq, err, "frame of %d bytes", env.Len)
		}
		if h.Seq != uint64(seq) {
			return st, violation(src, seq, nil, "sequence %d out of order", h.Seq)
		}
		rawLen := r.plan.ChunkLen(seq)
		if int64(h.RawLen) != int64(rawLen) {
			return st, violation(src, seq, nil, "chunk length %d, want %d", h.RawLen, rawLen)
		}

		raw := r.scratch[:rawLen]
		if err := decode(h.Codec, frame[HeaderSize:], raw); err != nil {
			return st, violation(src, seq, err, "%s payload", h.Codec)
		}
		if checksum(raw) != h.Checksum {
			return st, violation(src, seq, nil, "checksum mismatch")
		}

		if err := dst.Or(r.plan.Offset(seq), raw); err != nil {
			return st, fmt.Errorf("merge chunk %d from rank %d: %w", seq, src, err)
		}

		st.Chunks++
		st.RawBytes += int64(rawLen)
		st.WireBytes += int64(env.Len)
	}
	return st, nil
}

// Close releases the receive buffers.
func (r *Receiver) Close() error {
	if r.wire == nil {
		return nil
	}
	r.rc.ReleaseMemory(r.held)
	r.wire, r.scratch = nil, nil
	return nil
}
