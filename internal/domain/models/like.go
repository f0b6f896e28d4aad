package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like records one user's like on an attend. (AttendID, UserID) is unique.
type Like struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	AttendID  primitive.ObjectID `bson:"attend_id" json:"attend_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult string

const (
	LikeAdded   LikeResult = "added"
	LikeRemoved LikeResult = "removed"
)
