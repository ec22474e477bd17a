package output

import (
	"context"

	"rafflebot/internal/domain/entities"
)

// ParticipantJournal is the append-only durable record of committed
// registrations, in commit order. It is the source of truth on cold
// start; the in-memory index is rebuilt from it and never diverges.
type ParticipantJournal interface {
	// Append durably writes one record. It must not return before the
	// record is committed to stable storage: the registry treats a
	// successful Append as its durability boundary.
	Append(ctx context.Context, participant entities.Participant) error

	// ReadAll returns every record from the beginning, in commit
	// order. Used only during registry initialization. A malformed or
	// truncated journal is an error (domain.ErrCorruptJournal), not a
	// partial result.
	ReadAll(ctx context.Context) ([]entities.Participant, error)

	Close() error
}
