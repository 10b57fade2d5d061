package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType enum
type NotificationType string

const (
	PushNotification  NotificationType = "push"
	EmailNotification NotificationType = "email"
	SMSNotification   NotificationType = "sms"
)

// Notification is a message delivered to one user, optionally tied to an
// issue. Delivery itself is an external concern; this is the record of it.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	IssueID   *primitive.ObjectID `bson:"issueId,omitempty" json:"issueId,omitempty"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Type      NotificationType    `bson:"type" json:"type"`
	IsRead    bool                `bson:"isRead" json:"isRead"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
