package lifecycle

import (
	"context"
	"errors"

	"github.com/dalemusser/docthrough/internal/app/policy/challengepolicy"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/txn"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HardDeleteResult counts what a hard delete removed.
type HardDeleteResult struct {
	Attends   int64 `json:"attends"`
	Likes     int64 `json:"likes"`
	Feedbacks int64 `json:"feedbacks"`
}

// HardDelete removes a challenge together with its attends and their likes
// and feedback in one unit. It works from any status.
func (e *Engine) HardDelete(ctx context.Context, actor models.Actor, id primitive.ObjectID) (HardDeleteResult, error) {
	if err := requireActor(actor); err != nil {
		return HardDeleteResult{}, err
	}
	if !challengepolicy.CanHardDelete(actor) {
		return HardDeleteResult{}, apperr.Forbidden("only admins can permanently delete challenges")
	}

	var res HardDeleteResult
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		res = HardDeleteResult{}
		if _, err := e.challenges.GetByID(ctx, id); err != nil {
			return err
		}
		ids, err := e.attends.IDsByChallenge(ctx, id)
		if err != nil {
			return err
		}
		if res.Likes, err = e.likes.DeleteByAttends(ctx, ids); err != nil {
			return err
		}
		if res.Feedbacks, err = e.feedbacks.DeleteByAttends(ctx, ids); err != nil {
			return err
		}
		if txn.Fallback() {
			// Without a transaction attends, likes or comments may have
			// landed since the first read.
			if ids, err = e.attends.IDsByChallenge(ctx, id); err != nil {
				return err
			}
		}
		if res.Attends, err = e.attends.DeleteByChallenge(ctx, id); err != nil {
			return err
		}
		if txn.Fallback() {
			n, err := e.likes.DeleteByAttends(ctx, ids)
			if err != nil {
				return err
			}
			res.Likes += n
			if n, err = e.feedbacks.DeleteByAttends(ctx, ids); err != nil {
				return err
			}
			res.Feedbacks += n
		}
		n, err := e.challenges.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return HardDeleteResult{}, notFound(id)
	}
	if err != nil {
		return HardDeleteResult{}, apperr.Internal("hard delete challenge", err)
	}

	e.audit.ChallengeHardDeleted(ctx, id, actor.UserID, int(res.Attends))
	e.log.Info("challenge hard deleted",
		zap.String("challenge_id", id.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Int64("attends", res.Attends),
		zap.Int64("likes", res.Likes),
		zap.Int64("feedbacks", res.Feedbacks))
	return res, nil
}
