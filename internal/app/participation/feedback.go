package participation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxFeedbackList caps ListFeedback.
const MaxFeedbackList = 200

// AddFeedback leaves a comment on a live final attend and tells its author.
func (g *Gate) AddFeedback(ctx context.Context, actor models.Actor, id primitive.ObjectID, content string) (models.Feedback, error) {
	if err := requireActor(actor); err != nil {
		return models.Feedback{}, err
	}
	content = htmlsanitize.Body(content)
	if content == "" {
		return models.Feedback{}, apperr.Validation("Feedback is required.")
	}
	a, err := g.likeable(ctx, actor, id)
	if err != nil {
		return models.Feedback{}, err
	}

	var fb models.Feedback
	err = g.attach(ctx, id, func(ctx context.Context) error {
		var err error
		fb, err = g.feedbacks.Create(ctx, models.Feedback{
			AttendID: id,
			AuthorID: actor.UserID,
			Content:  content,
		})
		return err
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Feedback{}, attendNotFound(id)
	}
	if err != nil {
		return models.Feedback{}, apperr.Internal("add feedback", err)
	}
	if a.AuthorID != actor.UserID {
		g.notifier.Send(ctx, a.AuthorID, models.NotifyFeedback,
			fmt.Sprintf("New feedback on your submission %s.", id.Hex()))
	}
	return fb, nil
}

// ListFeedback returns the feedback on a visible attend, oldest first.
func (g *Gate) ListFeedback(ctx context.Context, actor models.Actor, id primitive.ObjectID, limit int64) ([]models.Feedback, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := g.loadAttend(ctx, actor, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxFeedbackList {
		limit = MaxFeedbackList
	}
	out, err := g.feedbacks.ListByAttend(ctx, id, limit)
	if err != nil {
		return nil, apperr.Internal("list feedback", err)
	}
	return out, nil
}
