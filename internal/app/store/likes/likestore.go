// internal/app/store/likes/likestore.go
package likestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/docthrough/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateLike is returned by Insert when the user already likes the attend.
var ErrDuplicateLike = errors.New("like already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("likes")}
}

// Insert records a like. The unique (attend_id, user_id) index makes a
// racing second insert fail with ErrDuplicateLike.
func (s *Store) Insert(ctx context.Context, attendID, userID primitive.ObjectID) (models.Like, error) {
	l := models.Like{
		ID:        primitive.NewObjectID(),
		AttendID:  attendID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Like{}, ErrDuplicateLike
		}
		return models.Like{}, err
	}
	return l, nil
}

// Delete removes the user's like and reports whether one existed.
func (s *Store) Delete(ctx context.Context, attendID, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"attend_id": attendID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// Exists reports whether the user likes the attend.
func (s *Store) Exists(ctx context.Context, attendID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"attend_id": attendID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of likes on the attend.
func (s *Store) Count(ctx context.Context, attendID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"attend_id": attendID})
}

// DeleteByAttends removes every like on the given attends.
func (s *Store) DeleteByAttends(ctx context.Context, attendIDs []primitive.ObjectID) (int64, error) {
	if len(attendIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"attend_id": bson.M{"$in": attendIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
