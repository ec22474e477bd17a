package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"rafflebot/internal/domain"
	"rafflebot/internal/domain/entities"
	"rafflebot/internal/ports/output"
)

var _ output.ParticipantJournal = (*ParticipantJournal)(nil)

// ParticipantJournal implements output.ParticipantJournal on top of a
// participants table. The id is inserted explicitly — assignment stays
// with the registry, the table only records history. Rows are
// append-only: no update or delete is ever issued.
type ParticipantJournal struct {
	pool *pgxpool.Pool
}

// NewParticipantJournal creates a ParticipantJournal over pool.
func NewParticipantJournal(pool *pgxpool.Pool) *ParticipantJournal {
	return &ParticipantJournal{pool: pool}
}

// Append inserts one committed registration. The INSERT is durable on
// return (synchronous commit), which is the registry's durability
// boundary.
func (j *ParticipantJournal) Append(ctx context.Context, participant entities.Participant) error {
	_, err := j.pool.Exec(ctx,
		`INSERT INTO participants (id, email) VALUES ($1, $2)`,
		int64(participant.ID), participant.Email,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// ReadAll returns every registration in commit order (id ascending).
func (j *ParticipantJournal) ReadAll(ctx context.Context) ([]entities.Participant, error) {
	rows, err := j.pool.Query(ctx,
		`SELECT id, email FROM participants ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	defer rows.Close()

	var participants []entities.Participant
	for rows.Next() {
		var id int64
		var email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if id <= 0 || !entities.ValidEmail(email) {
			return nil, fmt.Errorf("%w: ligne invalide (id=%d)", domain.ErrCorruptJournal, id)
		}
		participants = append(participants, entities.Participant{
			ID:    uint(id),
			Email: email,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

func (j *ParticipantJournal) Close() error {
	j.pool.Close()
	return nil
}
