package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification categories.
const (
	NotifyChallenge = "CHALLENGE"
	NotifyAttend    = "ATTEND"
	NotifyFeedback  = "FEEDBACK"
	NotifyApproval  = "APPROVAL"
	NotifyDeadline  = "DEADLINE"
)

// Notification is a message stored for a user.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Category  string             `bson:"category" json:"category"`
	Message   string             `bson:"message" json:"message"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
