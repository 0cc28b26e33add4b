package chunk

import (
	"context"
	"fmt"

	"github.com/TyllerAllen/CP431-FinalProject/comm"
	"github.com/TyllerAllen/CP431-FinalProject/internal/conv"
	"github.com/TyllerAllen/CP431-FinalProject/internal/resource"
)

// Stats summarizes one stream.
type Stats struct {
	Chunks    int
	RawBytes  int64
	WireBytes int64
}

// Sender streams buffers to one destination rank.
type Sender struct {
	c    comm.Communicator
	dst  int
	size int
	rc   *resource.Controller
	enc  *encoder
	wire []byte
	held int64
}

// NewSender reserves the frame buffers for chunks of size bytes.
// Close releases them.
func NewSender(c comm.Communicator, dst, size int, codec Codec, rc *resource.Controller) (*Sender, error) {
	if _, err := NewPlan(0, size); err != nil {
		return nil, err
	}
	held := int64(HeaderSize+size) + scratchSize(codec, size)
	if err := rc.AcquireMemory(held); err != nil {
		return nil, fmt.Errorf("allocate send buffers: %w", err)
	}
	return &Sender{
		c:    c,
		dst:  dst,
		size: size,
		rc:   rc,
		enc:  newEncoder(codec, size),
		wire: make([]byte, HeaderSize+size),
		held: held,
	}, nil
}

// Send transmits buf as Full() ARRAY frames followed by one LAST frame.
func (s *Sender) Send(ctx context.Context, buf []byte) (Stats, error) {
	p, err := NewPlan(len(buf), s.size)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for seq := 0; seq < p.Count(); seq++ {
		off := p.Offset(seq)
		raw := buf[off : off+p.ChunkLen(seq)]

		rawLen, err := conv.IntToUint32(len(raw))
		if err != nil {
			return st, fmt.Errorf("chunk %d: %w", seq, err)
		}
		codec, payload, err := s.enc.encode(raw)
		if err != nil {
			return st, fmt.Errorf("encode chunk %d: %w", seq, err)
		}
		header{
			Seq:      uint64(seq),
			Codec:    codec,
			RawLen:   rawLen,
			Checksum: checksum(raw),
		}.put(s.wire)
		n := copy(s.wire[HeaderSize:], payload)
		frame := s.wire[:HeaderSize+n]

		if err := s.rc.AcquireIO(ctx, len(frame)); err != nil {
			return st, err
		}
		if err := s.c.Send(ctx, s.dst, p.Tag(seq), frame); err != nil {
			return st, fmt.Errorf("send chunk %d to rank %d: %w", seq, s.dst, err)
		}

		st.Chunks++
		st.RawBytes += int64(len(raw))
		st.WireBytes += int64(len(frame))
	}
	return st, nil
}

// Close releases the send buffers.
func (s *Sender) Close() error {
	if s.wire == nil {
		return nil
	}
	s.rc.ReleaseMemory(s.held)
	s.wire = nil
	return nil
}
