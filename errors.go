package prodcount

import (
	"errors"
	"fmt"

	"github.com/TyllerAllen/CP431-FinalProject/internal/chunk"
	"github.com/TyllerAllen/CP431-FinalProject/internal/partition"
	"github.com/TyllerAllen/CP431-FinalProject/internal/presence"
	"github.com/TyllerAllen/CP431-FinalProject/internal/resource"
	"github.com/TyllerAllen/CP431-FinalProject/internal/triangle"
)

var (
	// ErrInvalidArgument is returned for an unusable n, worker count, chunk size or codec.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMemoryLimitExceeded is returned when a rank cannot reserve its bitmap or buffers.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrProtocol is returned when a rank's chunk stream violates the transport protocol.
	// No count is reported for such a run.
	ErrProtocol = errors.New("protocol violation")

	// ErrEnumerationDrift is returned when a rank's walk does not end where the
	// next rank's slice begins.
	ErrEnumerationDrift = errors.New("enumeration drift")
)

// ProtocolError carries the source rank, chunk sequence and reason of a
// protocol violation. Retrieve it with errors.As.
type ProtocolError = chunk.ProtocolError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, chunk.ErrProtocol) {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}
	if errors.Is(err, partition.ErrInvalidSize) ||
		errors.Is(err, partition.ErrInvalidWorkers) ||
		errors.Is(err, presence.ErrInvalidSize) ||
		errors.Is(err, chunk.ErrInvalidPlan) ||
		errors.Is(err, triangle.ErrOutOfDomain) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
