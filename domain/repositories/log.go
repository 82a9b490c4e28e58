package repositories

import (
	"context"

	"github.com/emberhome/ember/domain/entities"
)

// InteractionLog persists completed utterance exchanges.
type InteractionLog interface {
	Record(ctx context.Context, interaction *entities.Interaction) error
}

// InteractionHistory reads back recorded exchanges, newest first.
type InteractionHistory interface {
	RecentByHost(ctx context.Context, host string, limit int64) ([]entities.Interaction, error)
}
