package chunk

import (
	"errors"
	"fmt"
)

// ErrProtocol matches every *ProtocolError.
var ErrProtocol = errors.New("chunk: protocol violation")

// ProtocolError reports a stream that deviates from its plan.
// It is fatal for the source rank's contribution and for the run.
type ProtocolError struct {
	Rank   int
	Seq    int
	Reason string
	cause  error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("chunk: protocol violation from rank %d at chunk %d: %s", e.Rank, e.Seq, e.Reason)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.cause }

// Is makes errors.Is(err, ErrProtocol) hold.
func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

func violation(rank, seq int, cause error, format string, args ...any) *ProtocolError {
	return &ProtocolError{Rank: rank, Seq: seq, Reason: fmt.Sprintf(format, args...), cause: cause}
}
