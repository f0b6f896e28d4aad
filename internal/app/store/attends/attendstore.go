// internal/app/store/attends/attendstore.go
package attendstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateFinal is returned by Create when the author already has a
// live final attend on the challenge.
var ErrDuplicateFinal = errors.New("a final submission by this author already exists for the challenge")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attends")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Attend, error) {
	var a models.Attend
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return models.Attend{}, err
	}
	return a, nil
}

// Create inserts a. An empty title becomes the author's default title.
func (s *Store) Create(ctx context.Context, a models.Attend) (models.Attend, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	if strings.TrimSpace(a.Title) == "" {
		a.Title = models.DefaultAttendTitle(a.AuthorID)
	}
	a.IsDeleted = false
	a.DeleteReason = ""
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Attend{}, ErrDuplicateFinal
		}
		return models.Attend{}, err
	}
	return a, nil
}

// FindFinal returns the author's live final attend on the challenge.
func (s *Store) FindFinal(ctx context.Context, challengeID, authorID primitive.ObjectID) (models.Attend, error) {
	var a models.Attend
	err := s.c.FindOne(ctx, bson.M{
		"challenge_id": challengeID,
		"author_id":    authorID,
		"is_draft":     false,
		"is_deleted":   false,
	}).Decode(&a)
	if err != nil {
		return models.Attend{}, err
	}
	return a, nil
}

// Update changes title and/or content of a non-deleted attend. Nil leaves
// the field; an empty title restores the default.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, content *string) (models.Attend, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Attend{}, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			t = models.DefaultAttendTitle(cur.AuthorID)
		}
		set["title"] = t
	}
	if content != nil {
		set["content"] = *content
	}

	var out models.Attend
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Attend{}, err
	}
	return out, nil
}

// SoftDelete flags a live attend as deleted and returns it as it was before
// the update, so callers can see whether it held a participant slot.
// Returns mongo.ErrNoDocuments if it is missing or already deleted.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID, reason string) (models.Attend, error) {
	var before models.Attend
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{
			"is_deleted":    true,
			"delete_reason": reason,
			"updated_at":    time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return models.Attend{}, err
	}
	return before, nil
}

// Touch stamps activity_at on a live attend. Writing the attend document
// makes a transaction that attaches a like or feedback conflict with any
// concurrent delete of it. Returns mongo.ErrNoDocuments if it is missing or
// deleted.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"activity_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete physically removes one attend. Used to undo an insert whose
// admission failed.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistinctParticipants returns the distinct authors of live final attends.
func (s *Store) DistinctParticipants(ctx context.Context, challengeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	vals, err := s.c.Distinct(ctx, "author_id", bson.M{
		"challenge_id": challengeID,
		"is_draft":     false,
		"is_deleted":   false,
	})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		id, ok := v.(primitive.ObjectID)
		if !ok {
			return nil, fmt.Errorf("unexpected author_id type %T", v)
		}
		out = append(out, id)
	}
	return out, nil
}

// CountFinal returns the number of live final attends on the challenge.
func (s *Store) CountFinal(ctx context.Context, challengeID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"challenge_id": challengeID,
		"is_draft":     false,
		"is_deleted":   false,
	})
}

// IDsByChallenge returns the ids of every attend on the challenge, drafts
// and deleted rows included.
func (s *Store) IDsByChallenge(ctx context.Context, challengeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"challenge_id": challengeID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

// DeleteByChallenge physically removes every attend on the challenge.
func (s *Store) DeleteByChallenge(ctx context.Context, challengeID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"challenge_id": challengeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) list(ctx context.Context, filter bson.M, p paging.Params) ([]models.Attend, error) {
	cur, err := s.c.Find(ctx, p.Apply(filter), p.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Attend
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByChallenge returns live final attends, newest first.
func (s *Store) ListByChallenge(ctx context.Context, challengeID primitive.ObjectID, p paging.Params) ([]models.Attend, error) {
	return s.list(ctx, bson.M{
		"challenge_id": challengeID,
		"is_draft":     false,
		"is_deleted":   false,
	}, p)
}

// ListDrafts returns the author's live drafts on the challenge, newest first.
func (s *Store) ListDrafts(ctx context.Context, challengeID, authorID primitive.ObjectID, p paging.Params) ([]models.Attend, error) {
	return s.list(ctx, bson.M{
		"challenge_id": challengeID,
		"author_id":    authorID,
		"is_draft":     true,
		"is_deleted":   false,
	}, p)
}
