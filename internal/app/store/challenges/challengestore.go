// internal/app/store/challenges/challengestore.go
package challengestore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterKey = "challenges"

type Store struct {
	c        *mongo.Collection
	counters *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("challenges"),
		counters: db.Collection("counters"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Challenge, error) {
	var c models.Challenge
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Challenge{}, err
	}
	return c, nil
}

// nextSeq hands out the human-facing challenge number.
func (s *Store) nextSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterKey},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next challenge seq: %w", err)
	}
	return doc.Seq, nil
}

// Create inserts c as a new pending challenge with no participants.
func (s *Store) Create(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return models.Challenge{}, err
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Seq = seq
	c.TitleCI = text.Fold(c.Title)
	c.Status = models.ChallengePending
	c.ParticipantCount = 0
	c.Reason = ""
	c.ModeratedBy = nil
	c.ClosedAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Challenge{}, err
	}
	return c, nil
}

// Change carries the fields a status transition writes besides status.
type Change struct {
	// Reason replaces the stored reason. Empty clears it.
	Reason      string
	ModeratedBy *primitive.ObjectID
}

// Transition moves the challenge from one of action's source states to its
// target in a single conditional update and returns the updated row. It
// returns mongo.ErrNoDocuments when the challenge is missing or not in a
// source state; callers re-read to tell the two apart.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, action models.ChallengeAction, ch Change) (models.Challenge, error) {
	from, to, ok := models.Transition(action)
	if !ok {
		return models.Challenge{}, fmt.Errorf("unknown challenge action %q", action)
	}
	now := time.Now().UTC()

	set := bson.M{"status": to, "updated_at": now}
	unset := bson.M{}
	if ch.Reason != "" {
		set["reason"] = ch.Reason
	} else {
		unset["reason"] = ""
	}
	if ch.ModeratedBy != nil {
		set["moderated_by"] = *ch.ModeratedBy
	}
	if to == models.ChallengeCancelled || to == models.ChallengeDeadline {
		set["closed_at"] = now
	}
	if to == models.ChallengeDeadline {
		set["notices_pending"] = true
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var out models.Challenge
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Challenge{}, err
	}
	return out, nil
}

// Patch is a partial update of the editable challenge fields. Nil fields
// are left unchanged.
type Patch struct {
	Title    *string
	Content  *string
	Source   *string
	Field    *string
	DocType  *string
	Deadline *time.Time
	Capacity *int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Source == nil && p.Field == nil &&
		p.DocType == nil && p.Deadline == nil && p.Capacity == nil
}

// Update applies p while the challenge is live. A capacity change only
// applies when it is not below the current participant count, checked in the
// same conditional update. Returns mongo.ErrNoDocuments when any condition
// fails.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Challenge, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []models.ChallengeStatus{models.ChallengePending, models.ChallengeApproved}},
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
		set["title_ci"] = text.Fold(*p.Title)
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	if p.Source != nil {
		set["source"] = *p.Source
	}
	if p.Field != nil {
		set["field"] = *p.Field
	}
	if p.DocType != nil {
		set["doc_type"] = *p.DocType
	}
	if p.Deadline != nil {
		set["deadline"] = p.Deadline.UTC()
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
		filter["participant_count"] = bson.M{"$lte": *p.Capacity}
	}

	var out models.Challenge
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Challenge{}, err
	}
	return out, nil
}

// ReserveSlot admits one participant if the challenge is approved and below
// capacity. The check and the increment are one conditional update, so
// concurrent callers can never push the count past capacity.
func (s *Store) ReserveSlot(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":    id,
			"status": models.ChallengeApproved,
			"$expr":  bson.M{"$lt": bson.A{"$participant_count", "$capacity"}},
		},
		bson.M{
			"$inc": bson.M{"participant_count": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ReleaseSlot gives back a slot taken by ReserveSlot. The count never goes
// below zero.
func (s *Store) ReleaseSlot(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "participant_count": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"participant_count": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

// FindExpired returns live challenges whose deadline is before now, oldest
// deadline first. limit <= 0 means no limit.
func (s *Store) FindExpired(ctx context.Context, now time.Time, limit int64) ([]models.Challenge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "deadline", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{
		"status":   bson.M{"$in": []models.ChallengeStatus{models.ChallengePending, models.ChallengeApproved}},
		"deadline": bson.M{"$lt": now},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Challenge
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindPendingNotices returns deadline challenges whose notices have not
// been claimed yet, oldest close first.
func (s *Store) FindPendingNotices(ctx context.Context, limit int64) ([]models.Challenge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "closed_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"notices_pending": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Challenge
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountPendingNotices counts deadline challenges still waiting for notices.
func (s *Store) CountPendingNotices(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"notices_pending": true})
}

// ClaimNotices clears notices_pending and records runID as the sweep that
// sends them. One run wins; the others get mongo.ErrNoDocuments. The winning
// run may call it again, so a retried claim that already applied still
// succeeds.
func (s *Store) ClaimNotices(ctx context.Context, id primitive.ObjectID, runID string) (models.Challenge, error) {
	var out models.Challenge
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "$or": bson.A{
			bson.M{"notices_pending": true},
			bson.M{"notice_run": runID},
		}},
		bson.M{
			"$set":   bson.M{"notice_run": runID, "notified_at": time.Now().UTC()},
			"$unset": bson.M{"notices_pending": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.Challenge{}, err
	}
	return out, nil
}

// Delete removes a challenge. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows List. Zero fields do not filter.
type ListFilter struct {
	Statuses []models.ChallengeStatus
	OwnerID  primitive.ObjectID
	Field    string
	// Search matches a case- and accent-insensitive substring of the title.
	Search string
	// IncludeDeleted lists soft-deleted challenges too.
	IncludeDeleted bool
}

func (f ListFilter) bson() bson.M {
	q := bson.M{}
	switch {
	case len(f.Statuses) == 0 && !f.IncludeDeleted:
		q["status"] = bson.M{"$ne": models.ChallengeDeleted}
	case len(f.Statuses) > 0:
		kept := make([]models.ChallengeStatus, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			if st != models.ChallengeDeleted || f.IncludeDeleted {
				kept = append(kept, st)
			}
		}
		q["status"] = bson.M{"$in": kept}
	}
	if !f.OwnerID.IsZero() {
		q["owner_id"] = f.OwnerID
	}
	if f.Field != "" {
		q["field"] = strings.ToLower(f.Field)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q["title_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(s))}
	}
	return q
}

// List returns one page of challenges, newest first.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.Challenge, error) {
	cur, err := s.c.Find(ctx, p.Apply(f.bson()), p.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Challenge
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
