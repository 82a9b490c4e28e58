package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interaction records one completed utterance exchange: what was heard
// and what was answered. Persisted best-effort; losing a record never
// fails the session.
type Interaction struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Host       string             `json:"host" bson:"host"`
	Room       string             `json:"room,omitempty" bson:"room,omitempty"`
	Heard      string             `json:"heard" bson:"heard"`
	Reply      string             `json:"reply" bson:"reply"`
	Routed     bool               `json:"routed" bson:"routed"`
	ReceivedAt time.Time          `json:"received_at" bson:"received_at"`
	DurationMs int64              `json:"duration_ms" bson:"duration_ms"`
}
