// Package comm defines the process runtime consumed by every rank.
//
// A Communicator gives a rank its identity, a barrier, and ordered, reliable,
// blocking point-to-point messages tagged by a small integer. Messages between
// a fixed (source, destination) pair arrive in send order.
package comm

import (
	"context"
	"errors"
	"fmt"
)

// Tag labels a message within a rank-to-coordinator stream.
type Tag int

const (
	// TagArray marks a full-size chunk.
	TagArray Tag = 0
	// TagLast marks the final, possibly shorter, chunk.
	TagLast Tag = 1
)

func (t Tag) String() string {
	switch t {
	case TagArray:
		return "ARRAY"
	case TagLast:
		return "LAST"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// Coordinator is the rank that merges and reports.
const Coordinator = 0

var (
	// ErrInvalidRank is returned when a peer rank is outside [0, Size).
	ErrInvalidRank = errors.New("comm: invalid rank")

	// ErrTruncated is returned when a message does not fit the receive buffer.
	ErrTruncated = errors.New("comm: message truncated")

	// ErrClosed is returned once the runtime has shut down.
	ErrClosed = errors.New("comm: closed")
)

// Envelope describes a received message.
type Envelope struct {
	Source int
	Tag    Tag
	Len    int
}

// Communicator is one rank's view of the runtime.
type Communicator interface {
	// Rank returns this rank's identity in [0, Size).
	Rank() int
	// Size returns the number of ranks.
	Size() int
	// Barrier blocks until every rank has entered it.
	Barrier(ctx context.Context) error
	// Send delivers payload to dst. The payload may be reused after Send returns.
	Send(ctx context.Context, dst int, tag Tag, payload []byte) error
	// Recv copies the next message from src into buf. It does not filter by
	// tag; callers validate the envelope. A message longer than buf fails with
	// ErrTruncated.
	Recv(ctx context.Context, src int, buf []byte) (Envelope, error)
}
