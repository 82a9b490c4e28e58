package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emberhome/ember/domain/entities"
	"github.com/emberhome/ember/domain/repositories"
)

type InteractionRepository struct {
	collection *mongo.Collection
}

var (
	_ repositories.InteractionLog     = (*InteractionRepository)(nil)
	_ repositories.InteractionHistory = (*InteractionRepository)(nil)
)

// NewInteractionRepository persists one document per completed
// utterance exchange into the interactions collection.
func NewInteractionRepository(db *mongo.Database) *InteractionRepository {
	return &InteractionRepository{
		collection: db.Collection("interactions"),
	}
}

// Record implements repositories.InteractionLog.
func (r *InteractionRepository) Record(ctx context.Context, interaction *entities.Interaction) error {
	if interaction == nil {
		return errors.New("interaction cannot be nil")
	}
	if interaction.ReceivedAt.IsZero() {
		interaction.ReceivedAt = time.Now()
	}

	doc := bson.M{
		"host":        interaction.Host,
		"room":        interaction.Room,
		"heard":       interaction.Heard,
		"reply":       interaction.Reply,
		"routed":      interaction.Routed,
		"received_at": interaction.ReceivedAt,
		"duration_ms": interaction.DurationMs,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		interaction.ID = oid
	}
	return nil
}

// RecentByHost returns the latest interactions for a listener host,
// newest first.
func (r *InteractionRepository) RecentByHost(ctx context.Context, host string, limit int64) ([]entities.Interaction, error) {
	if host == "" {
		return nil, errors.New("host cannot be empty")
	}
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.M{"received_at": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"host": host}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions for host %s: %w", host, err)
	}
	defer cursor.Close(ctx)

	var interactions []entities.Interaction
	if err := cursor.All(ctx, &interactions); err != nil {
		return nil, fmt.Errorf("failed to decode interactions: %w", err)
	}
	return interactions, nil
}
