package participation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/app/system/txn"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Changes is a partial edit of an attend. Nil fields stay unchanged; an
// empty title restores the default.
type Changes struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Update edits an attend. Attends can only change while their challenge is
// open.
func (g *Gate) Update(ctx context.Context, actor models.Actor, id primitive.ObjectID, ch Changes) (models.Attend, error) {
	if err := requireActor(actor); err != nil {
		return models.Attend{}, err
	}
	if ch.Title == nil && ch.Content == nil {
		return models.Attend{}, apperr.Validation("Nothing to update.")
	}
	a, _, err := g.loadManaged(ctx, actor, id)
	if err != nil {
		return models.Attend{}, err
	}
	if ch.Title != nil {
		v := htmlsanitize.Text(*ch.Title)
		if len(v) > 200 {
			return models.Attend{}, apperr.Validation("Title must be at most 200 characters.")
		}
		ch.Title = &v
	}
	if ch.Content != nil {
		v := htmlsanitize.Body(*ch.Content)
		if v == "" && !a.IsDraft {
			return models.Attend{}, apperr.Validation("Content is required.")
		}
		ch.Content = &v
	}

	out, err := g.attends.Update(ctx, id, ch.Title, ch.Content)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Attend{}, attendNotFound(id)
	}
	if err != nil {
		return models.Attend{}, apperr.Internal("update submission", err)
	}
	g.notifier.Send(ctx, out.AuthorID, models.NotifyAttend,
		fmt.Sprintf("Your submission %s was updated.", out.ID.Hex()))
	return out, nil
}

// SoftDelete removes an attend's likes and feedback, flags it deleted and,
// for a final attend, gives its participant slot back, all in one unit.
func (g *Gate) SoftDelete(ctx context.Context, actor models.Actor, id primitive.ObjectID, reason string) (models.Attend, error) {
	if err := requireActor(actor); err != nil {
		return models.Attend{}, err
	}
	a, _, err := g.loadManaged(ctx, actor, id)
	if err != nil {
		return models.Attend{}, err
	}
	reason = htmlsanitize.Text(reason)
	ids := []primitive.ObjectID{id}

	var before models.Attend
	err = txn.Run(ctx, g.db, g.log, func(ctx context.Context) error {
		if _, err := g.likes.DeleteByAttends(ctx, ids); err != nil {
			return err
		}
		if _, err := g.feedbacks.DeleteByAttends(ctx, ids); err != nil {
			return err
		}
		var err error
		if before, err = g.attends.SoftDelete(ctx, id, reason); err != nil {
			return err
		}
		if before.Final() {
			if err := g.challenges.ReleaseSlot(ctx, before.ChallengeID); err != nil {
				return err
			}
		}
		if txn.Fallback() {
			// Without a transaction a like or comment may have landed
			// between the cascade and the flag.
			if _, err := g.likes.DeleteByAttends(ctx, ids); err != nil {
				return err
			}
			if _, err := g.feedbacks.DeleteByAttends(ctx, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Attend{}, attendNotFound(id)
	}
	if err != nil {
		return models.Attend{}, apperr.Internal("delete submission", err)
	}

	before.IsDeleted = true
	before.DeleteReason = reason
	g.audit.AttendDeleted(ctx, id, a.ChallengeID, actor.UserID, reason)
	g.log.Info("submission deleted",
		zap.String("attend_id", id.Hex()),
		zap.String("challenge_id", a.ChallengeID.Hex()),
		zap.String("user_id", actor.UserID.Hex()))

	msg := fmt.Sprintf("Your submission %s was deleted.", id.Hex())
	if reason != "" {
		msg = fmt.Sprintf("Your submission %s was deleted: %s", id.Hex(), reason)
	}
	g.notifier.Send(ctx, a.AuthorID, models.NotifyAttend, msg)
	return before, nil
}

// Get returns one attend. Drafts are visible to their author and admins;
// deleted attends to admins only.
func (g *Gate) Get(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Attend, error) {
	if err := requireActor(actor); err != nil {
		return models.Attend{}, err
	}
	return g.loadAttend(ctx, actor, id)
}

// ListByChallenge returns a page of the live final attends of a challenge.
func (g *Gate) ListByChallenge(ctx context.Context, actor models.Actor, challengeID primitive.ObjectID, p paging.Params) (paging.Page[models.Attend], error) {
	if err := requireActor(actor); err != nil {
		return paging.Page[models.Attend]{}, err
	}
	if _, err := g.loadChallenge(ctx, actor, challengeID); err != nil {
		return paging.Page[models.Attend]{}, err
	}
	rows, err := g.attends.ListByChallenge(ctx, challengeID, p)
	if err != nil {
		return paging.Page[models.Attend]{}, apperr.Internal("list submissions", err)
	}
	return paging.Build(rows, p, attendID), nil
}

// ListDrafts returns a page of the actor's own drafts on a challenge.
func (g *Gate) ListDrafts(ctx context.Context, actor models.Actor, challengeID primitive.ObjectID, p paging.Params) (paging.Page[models.Attend], error) {
	if err := requireActor(actor); err != nil {
		return paging.Page[models.Attend]{}, err
	}
	if _, err := g.loadChallenge(ctx, actor, challengeID); err != nil {
		return paging.Page[models.Attend]{}, err
	}
	rows, err := g.attends.ListDrafts(ctx, challengeID, actor.UserID, p)
	if err != nil {
		return paging.Page[models.Attend]{}, apperr.Internal("list drafts", err)
	}
	return paging.Build(rows, p, attendID), nil
}

func attendID(a models.Attend) primitive.ObjectID { return a.ID }
