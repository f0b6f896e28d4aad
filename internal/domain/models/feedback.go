package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a comment left on an attend.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	AttendID  primitive.ObjectID `bson:"attend_id" json:"attend_id"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
