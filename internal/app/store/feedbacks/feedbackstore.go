// internal/app/store/feedbacks/feedbackstore.go
package feedbackstore

import (
	"context"
	"time"

	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedbacks")}
}

func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

// ListByAttend returns feedback on the attend, oldest first, so a thread
// reads top to bottom.
func (s *Store) ListByAttend(ctx context.Context, attendID primitive.ObjectID, limit int64) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"attend_id": attendID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByAttends removes every feedback on the given attends.
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
