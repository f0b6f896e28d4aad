// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index names referenced by stores and tests.
const (
	ChallengeSeqUnique = "uniq_challenges_seq"
	AttendFinalUnique  = "uniq_attends_final_per_author"
	LikeUnique         = "uniq_likes_attend_user"
)

/*
EnsureAll is called from EnsureSchema at startup. Each ensure* function is
idempotent. Errors are aggregated so every problem is visible and startup
fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		coll string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"challenges", ensureChallenges},
		{"attends", ensureAttends},
		{"likes", ensureLikes},
		{"feedbacks", ensureFeedbacks},
		{"notifications", ensureNotifications},
		{"audit_events", ensureAuditEvents},
	}

	var problems []string
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconciler                                                                 */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
}

func docSig(d bson.D) string {
	parts := make([]string, 0, len(d))
	for _, kv := range d {
		if sub, ok := kv.Value.(bson.D); ok {
			parts = append(parts, fmt.Sprintf("%s:{%s}", kv.Key, docSig(sub)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isTrue(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "E11000")
}

// desired is an index model with its comparable parts pulled out.
type desired struct {
	model   mongo.IndexModel
	name    string
	keys    string
	unique  bool
	partial string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, keys: docSig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = isTrue(m.Options.Unique)
		if pf, ok := m.Options.PartialFilterExpression.(bson.D); ok {
			d.partial = docSig(pf)
		}
	}
	return d
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[docSig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet reconciles models against what exists on coll. An index
// with the same keys but different name, uniqueness or partial filter is
// dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// Collection may not exist yet; CreateOne will create it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		want := describe(m)
		start := time.Now()

		if ex, ok := existing[want.keys]; ok {
			same := want.unique == isTrue(ex.Unique) &&
				want.partial == docSig(ex.Partial) &&
				(want.name == "" || want.name == ex.Name)
			if same {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", want.keys))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), ex.Name, err))
				continue
			}
			zap.L().Info("dropped index with outdated options",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", want.keys))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if want.unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), want.name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), want.name, err))
			}
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", want.name),
			zap.String("keys", want.keys),
			zap.Bool("unique", want.unique),
			zap.String("partial", want.partial),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collections                                                                */
/* -------------------------------------------------------------------------- */

func ensureChallenges(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("challenges"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "seq", Value: 1}},
			Options: options.Index().SetName(ChallengeSeqUnique).SetUnique(true),
		},
		{
			// Deadline sweep: status in {pending, approved} and deadline < now.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}},
			Options: options.Index().SetName("idx_challenges_status_deadline"),
		},
		{
			Keys: bson.D{{Key: "notices_pending", Value: 1}},
			Options: options.Index().SetName("idx_challenges_notices_pending").
				SetPartialFilterExpression(bson.M{"notices_pending": true}),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_challenges_owner_created"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}},
			Options: options.Index().SetName("idx_challenges_title_ci"),
		},
	})
}

func ensureAttends(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("attends"), []mongo.IndexModel{
		{
			// At most one live final submission per (challenge, author).
			// Drafts and soft-deleted rows are outside the filter.
			Keys: bson.D{{Key: "challenge_id", Value: 1}, {Key: "author_id", Value: 1}},
			Options: options.Index().
				SetName(AttendFinalUnique).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "is_draft", Value: false},
					{Key: "is_deleted", Value: false},
				}),
		},
		{
			Keys:    bson.D{{Key: "challenge_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_attends_challenge_created"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("idx_attends_author"),
		},
	})
}

func ensureLikes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("likes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "attend_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName(LikeUnique).SetUnique(true),
		},
	})
}

func ensureFeedbacks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("feedbacks"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "attend_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_feedbacks_attend_created"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}},
			Options: options.Index().SetName("idx_notifications_user_read"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_timestamp"),
		},
	})
}
