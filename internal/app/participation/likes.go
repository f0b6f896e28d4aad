package participation

import (
	"context"
	"errors"
	"fmt"

	likestore "github.com/dalemusser/docthrough/internal/app/store/likes"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/retry"
	"github.com/dalemusser/docthrough/internal/app/system/txn"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// maxToggleRounds bounds the delete/insert loop of ToggleLike. Each round
// that loses a race observes the winner's write, so two rounds settle any
// pair of concurrent toggles.
const maxToggleRounds = 4

// likeable reads a live final attend the actor may like.
func (g *Gate) likeable(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Attend, error) {
	a, err := g.loadAttend(ctx, actor, id)
	if err != nil {
		return models.Attend{}, err
	}
	if a.IsDeleted {
		return models.Attend{}, attendNotFound(id)
	}
	if a.IsDraft {
		return models.Attend{}, apperr.InvalidState("submission %s is a draft", id.Hex())
	}
	return a, nil
}

// attach runs insert against a live attend. Inside a transaction the insert
// is paired with a write to the attend document, so it conflicts with any
// concurrent soft or hard delete of it. Without transactions the attend is
// read back afterwards; if it has gone, its likes and feedback are swept
// again. Returns mongo.ErrNoDocuments when the attend is no longer live.
func (g *Gate) attach(ctx context.Context, id primitive.ObjectID, insert func(ctx context.Context) error) error {
	err := txn.Run(ctx, g.db, g.log, func(ctx context.Context) error {
		if err := g.attends.Touch(ctx, id); err != nil {
			return err
		}
		return insert(ctx)
	})
	if err != nil || !txn.Fallback() {
		return err
	}

	a, err := g.attends.GetByID(ctx, id)
	if err == nil && !a.IsDeleted {
		return nil
	}
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	ids := []primitive.ObjectID{id}
	if _, err := g.likes.DeleteByAttends(ctx, ids); err != nil {
		return err
	}
	if _, err := g.feedbacks.DeleteByAttends(ctx, ids); err != nil {
		return err
	}
	return mongo.ErrNoDocuments
}

// ToggleLike removes the actor's like on the attend if there is one and
// adds it otherwise. The delete is tried first and the insert relies on the
// unique (attend, user) index, so concurrent toggles never leave two likes
// and never both report LikeAdded.
func (g *Gate) ToggleLike(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.LikeResult, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	a, err := g.likeable(ctx, actor, id)
	if err != nil {
		return "", err
	}

	var result models.LikeResult
	err = retry.Do(ctx, g.attempts, func(ctx context.Context) error {
		for i := 0; i < maxToggleRounds; i++ {
			removed, err := g.likes.Delete(ctx, id, actor.UserID)
			if err != nil {
				return err
			}
			if removed {
				result = models.LikeRemoved
				return nil
			}
			err = g.attach(ctx, id, func(ctx context.Context) error {
				_, err := g.likes.Insert(ctx, id, actor.UserID)
				return err
			})
			if errors.Is(err, likestore.ErrDuplicateLike) {
				continue
			}
			if err != nil {
				return err
			}
			result = models.LikeAdded
			return nil
		}
		return fmt.Errorf("like toggle on %s did not settle", id.Hex())
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", attendNotFound(id)
	}
	if err != nil {
		return "", apperr.Internal("toggle like", err)
	}

	g.metrics.LikeToggle(string(result))
	if result == models.LikeAdded && a.AuthorID != actor.UserID {
		g.notifier.Send(ctx, a.AuthorID, models.NotifyAttend,
			fmt.Sprintf("Someone liked your submission %s.", id.Hex()))
	}
	return result, nil
}

// LikeCount returns how many likes a visible attend has.
func (g *Gate) LikeCount(ctx context.Context, actor models.Actor, id primitive.ObjectID) (int64, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	if _, err := g.loadAttend(ctx, actor, id); err != nil {
		return 0, err
	}
	n, err := g.likes.Count(ctx, id)
	if err != nil {
		return 0, apperr.Internal("count likes", err)
	}
	return n, nil
}

// Liked reports whether the actor currently likes the attend.
func (g *Gate) Liked(ctx context.Context, actor models.Actor, id primitive.ObjectID) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	if _, err := g.loadAttend(ctx, actor, id); err != nil {
		return false, err
	}
	ok, err := g.likes.Exists(ctx, id, actor.UserID)
	if err != nil {
		return false, apperr.Internal("read like", err)
	}
	return ok, nil
}
