package input

import (
	"context"

	"rafflebot/internal/domain/entities"
)

type RegistryUseCase interface {
	Register(ctx context.Context, email string) (*entities.Participant, error)
	ListAll(ctx context.Context) []entities.Participant
	PickRandom(ctx context.Context) (*entities.Participant, error)
}
