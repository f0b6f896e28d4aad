package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/docthrough/internal/app/policy/challengepolicy"
	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Approve opens a pending challenge for submissions.
func (e *Engine) Approve(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	if !challengepolicy.CanModerate(actor) {
		return models.Challenge{}, apperr.Forbidden("only admins can approve challenges")
	}
	c, err := e.transition(ctx, actor, id, models.ActionApprove, challengestore.Change{ModeratedBy: &actor.UserID})
	if err != nil {
		return models.Challenge{}, err
	}
	e.audit.ChallengeApproved(ctx, c.ID, actor.UserID)
	e.notifier.Send(ctx, c.OwnerID, models.NotifyApproval,
		fmt.Sprintf("Your challenge %s was approved.", label(c)))
	return c, nil
}

// Reject closes a pending proposal. reason is required and stored.
func (e *Engine) Reject(ctx context.Context, actor models.Actor, id primitive.ObjectID, reason string) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	if !challengepolicy.CanModerate(actor) {
		return models.Challenge{}, apperr.Forbidden("only admins can reject challenges")
	}
	reason = htmlsanitize.Text(reason)
	if reason == "" {
		return models.Challenge{}, apperr.Validation("A rejection reason is required.")
	}
	c, err := e.transition(ctx, actor, id, models.ActionReject, challengestore.Change{Reason: reason, ModeratedBy: &actor.UserID})
	if err != nil {
		return models.Challenge{}, err
	}
	e.audit.ChallengeRejected(ctx, c.ID, actor.UserID, reason)
	e.notifier.Send(ctx, c.OwnerID, models.NotifyApproval,
		fmt.Sprintf("Your challenge %s was rejected: %s", label(c), reason))
	return c, nil
}

// Cancel closes a live challenge at its owner's request.
func (e *Engine) Cancel(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	cur, err := e.load(ctx, actor, id)
	if err != nil {
		return models.Challenge{}, err
	}
	if !challengepolicy.CanCancel(actor, cur) {
		return models.Challenge{}, apperr.Forbidden("only the owner can cancel challenge %s", id.Hex())
	}
	c, err := e.transition(ctx, actor, id, models.ActionCancel, challengestore.Change{Reason: cur.Reason})
	if err != nil {
		return models.Challenge{}, err
	}
	e.audit.ChallengeCancelled(ctx, c.ID, actor.UserID)
	e.notifier.Send(ctx, c.OwnerID, models.NotifyChallenge,
		fmt.Sprintf("Your challenge %s was cancelled.", label(c)))
	return c, nil
}

// SoftDelete flags an approved challenge deleted. Its attends stay in
// place; the challenge disappears from non-admin reads.
func (e *Engine) SoftDelete(ctx context.Context, actor models.Actor, id primitive.ObjectID, reason string) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	cur, err := e.load(ctx, actor, id)
	if err != nil {
		return models.Challenge{}, err
	}
	if !challengepolicy.CanSoftDelete(actor, cur) {
		return models.Challenge{}, apperr.Forbidden("only the owner or an admin can delete challenge %s", id.Hex())
	}
	reason = htmlsanitize.Text(reason)
	c, err := e.transition(ctx, actor, id, models.ActionDelete, challengestore.Change{Reason: reason, ModeratedBy: moderator(actor, cur)})
	if err != nil {
		return models.Challenge{}, err
	}
	e.audit.ChallengeDeleted(ctx, c.ID, actor.UserID, reason)

	msg := fmt.Sprintf("Your challenge %s was deleted.", label(c))
	if reason != "" {
		msg = strings.TrimSuffix(msg, ".") + ": " + reason
	}
	e.notifier.Send(ctx, c.OwnerID, models.NotifyChallenge, msg)
	return c, nil
}

// moderator records the admin who acted on someone else's challenge.
func moderator(actor models.Actor, c models.Challenge) *primitive.ObjectID {
	if c.IsOwner(actor.UserID) {
		return nil
	}
	id := actor.UserID
	return &id
}
