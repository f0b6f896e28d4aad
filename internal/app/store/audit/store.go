// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryModeration = "moderation" // admin and owner decisions
	CategorySystem     = "system"     // scheduled transitions
)

// Event types
const (
	EventChallengeApproved    = "challenge_approved"
	EventChallengeRejected    = "challenge_rejected"
	EventChallengeCancelled   = "challenge_cancelled"
	EventChallengeDeleted     = "challenge_deleted"
	EventChallengeHardDeleted = "challenge_hard_deleted"
	EventChallengeExpired     = "challenge_expired"
	EventAttendDeleted        = "attend_deleted"
)

// Event is one recorded moderation or lifecycle decision.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	ChallengeID *primitive.ObjectID `bson:"challenge_id,omitempty" json:"challenge_id,omitempty"`
	AttendID    *primitive.ObjectID `bson:"attend_id,omitempty" json:"attend_id,omitempty"`
	ActorID     *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // nil for system events

	Reason  string            `bson:"reason,omitempty" json:"reason,omitempty"`
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	ChallengeID *primitive.ObjectID
	ActorID     *primitive.ObjectID
	Category    string
	EventType   string
	Since       *time.Time
	Limit       int64
	Offset      int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

func (f QueryFilter) bson() bson.M {
	q := bson.M{}
	if f.ChallengeID != nil {
		q["challenge_id"] = *f.ChallengeID
	}
	if f.ActorID != nil {
		q["actor_id"] = *f.ActorID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.Since != nil {
		q["timestamp"] = bson.M{"$gte": *f.Since}
	}
	return q
}

// Query returns matching events, newest first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of events matching filter.
func (s *Store) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}

// ForChallenge returns the recent history of one challenge.
func (s *Store) ForChallenge(ctx context.Context, challengeID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{ChallengeID: &challengeID, Limit: limit})
}
