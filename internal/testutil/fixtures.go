package testutil

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handlers directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var fixtureSeq atomic.Int64

// Fixtures inserts test data directly, bypassing the engines.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// ChallengeOpts customises CreateChallenge. Zero fields get defaults:
// a fresh owner, approved status, capacity 3 and a deadline a day out.
type ChallengeOpts struct {
	OwnerID  primitive.ObjectID
	Status   models.ChallengeStatus
	Capacity int
	Deadline time.Time
	Title    string
}

// CreateChallenge inserts a challenge.
func (f *Fixtures) CreateChallenge(ctx context.Context, o ChallengeOpts) models.Challenge {
	f.t.Helper()

	now := time.Now().UTC()
	if o.OwnerID.IsZero() {
		o.OwnerID = primitive.NewObjectID()
	}
	if o.Status == "" {
		o.Status = models.ChallengeApproved
	}
	if o.Capacity == 0 {
		o.Capacity = 3
	}
	if o.Deadline.IsZero() {
		o.Deadline = now.Add(24 * time.Hour)
	}
	if o.Title == "" {
		o.Title = "Test Challenge"
	}

	c := models.Challenge{
		ID:        primitive.NewObjectID(),
		Seq:       1_000_000 + fixtureSeq.Add(1),
		Title:     o.Title,
		TitleCI:   text.Fold(o.Title),
		Content:   "<p>Translate this.</p>",
		Source:    "https://example.com/doc",
		Field:     models.FieldWeb,
		DocType:   models.DocTypeOfficial,
		Capacity:  o.Capacity,
		Deadline:  o.Deadline.UTC().Truncate(time.Millisecond),
		OwnerID:   o.OwnerID,
		Status:    o.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if o.Status == models.ChallengeRejected {
		c.Reason = "not a fit"
	}
	if _, err := f.db.Collection("challenges").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test challenge: %v", err)
	}
	return c
}

// CreateExpiredChallenge inserts a challenge whose deadline passed an hour ago.
func (f *Fixtures) CreateExpiredChallenge(ctx context.Context, status models.ChallengeStatus) models.Challenge {
	f.t.Helper()
	return f.CreateChallenge(ctx, ChallengeOpts{
		Status:   status,
		Deadline: time.Now().UTC().Add(-time.Hour),
	})
}

// CreateAttend inserts an attend. A final attend also bumps the challenge's
// participant count so the admission counter matches the rows.
func (f *Fixtures) CreateAttend(ctx context.Context, challengeID, authorID primitive.ObjectID, draft bool) models.Attend {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Attend{
		ID:          primitive.NewObjectID(),
		ChallengeID: challengeID,
		AuthorID:    authorID,
		Title:       models.DefaultAttendTitle(authorID),
		Content:     "<p>Translated text.</p>",
		IsDraft:     draft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("attends").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test attend: %v", err)
	}
	if !draft {
		_, err := f.db.Collection("challenges").UpdateByID(ctx, challengeID,
			bson.M{"$inc": bson.M{"participant_count": 1}})
		if err != nil {
			f.t.Fatalf("failed to bump participant count: %v", err)
		}
	}
	return a
}

// CreateLike inserts a like by userID on attendID.
func (f *Fixtures) CreateLike(ctx context.Context, attendID, userID primitive.ObjectID) models.Like {
	f.t.Helper()

	l := models.Like{
		ID:        primitive.NewObjectID(),
		AttendID:  attendID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("likes").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("failed to create test like: %v", err)
	}
	return l
}

// CreateFeedback inserts a feedback comment on attendID.
func (f *Fixtures) CreateFeedback(ctx context.Context, attendID, authorID primitive.ObjectID, content string) models.Feedback {
	f.t.Helper()

	now := time.Now().UTC()
	fb := models.Feedback{
		ID:        primitive.NewObjectID(),
		AttendID:  attendID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("feedbacks").InsertOne(ctx, fb); err != nil {
		f.t.Fatalf("failed to create test feedback: %v", err)
	}
	return fb
}

// Count returns the number of documents in coll matching filter.
func (f *Fixtures) Count(ctx context.Context, coll string, filter bson.M) int64 {
	f.t.Helper()

	n, err := f.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count %s: %v", coll, err)
	}
	return n
}
