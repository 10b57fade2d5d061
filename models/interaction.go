package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InteractionType enum
type InteractionType string

const (
	Like    InteractionType = "like"
	Comment InteractionType = "comment"
	Share   InteractionType = "share"
	// ReopenRequest is how a citizen asks for a resolved or closed issue to
	// be handled again; the actual reopened transition stays with staff.
	ReopenRequest InteractionType = "reopen_request"
)

// IssueInteraction is a like/comment/share event tied to one issue and one
// actor. Comments and reopen requests carry free-text content.
type IssueInteraction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID `bson:"issueId" json:"issueId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      InteractionType    `bson:"interactionType" json:"interactionType"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureLikeIndex creates a unique (issueId, userId) index scoped to likes so
// a user can like an issue at most once.
func EnsureLikeIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"interactionType": string(Like)}),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
