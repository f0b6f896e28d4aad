package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/docthrough/internal/app/policy/challengepolicy"
	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Changes is a partial edit of a challenge. Nil fields stay unchanged.
type Changes struct {
	Title    *string    `json:"title"`
	Content  *string    `json:"content"`
	Source   *string    `json:"source"`
	Field    *string    `json:"field"`
	DocType  *string    `json:"doc_type"`
	Deadline *time.Time `json:"deadline"`
	Capacity *int       `json:"capacity"`
}

// patch normalises the changes and validates the challenge they would
// produce from cur.
func (ch Changes) patch(cur models.Challenge, now time.Time) (challengestore.Patch, error) {
	var p challengestore.Patch
	merged := Proposal{
		Title:    cur.Title,
		Content:  cur.Content,
		Source:   cur.Source,
		Field:    cur.Field,
		DocType:  cur.DocType,
		Capacity: cur.Capacity,
		Deadline: cur.Deadline,
	}
	if ch.Title != nil {
		v := htmlsanitize.Text(*ch.Title)
		p.Title, merged.Title = &v, v
	}
	if ch.Content != nil {
		v := htmlsanitize.Body(*ch.Content)
		p.Content, merged.Content = &v, v
	}
	if ch.Source != nil {
		v := strings.TrimSpace(*ch.Source)
		p.Source, merged.Source = &v, v
	}
	if ch.Field != nil {
		v := strings.ToLower(strings.TrimSpace(*ch.Field))
		p.Field, merged.Field = &v, v
	}
	if ch.DocType != nil {
		v := strings.ToLower(strings.TrimSpace(*ch.DocType))
		p.DocType, merged.DocType = &v, v
	}
	if ch.Capacity != nil {
		v := *ch.Capacity
		p.Capacity, merged.Capacity = &v, v
	}
	if ch.Deadline != nil {
		v := ch.Deadline.UTC()
		p.Deadline, merged.Deadline = &v, v
	}
	if p.Empty() {
		return p, apperr.Validation("Nothing to update.")
	}

	// An untouched past deadline is left for the sweeper.
	if p.Deadline == nil {
		merged.Deadline = now.Add(time.Hour)
	}
	if err := merged.validate(now); err != nil {
		return p, err
	}
	if p.Capacity != nil && *p.Capacity < cur.ParticipantCount {
		return p, capacityBelowCount(*p.Capacity, cur.ParticipantCount)
	}
	return p, nil
}

func capacityBelowCount(capacity, count int) error {
	return apperr.Validation("Capacity %d is below the current participant count %d.", capacity, count)
}

// Update edits a live challenge. A capacity change is applied only if it
// stays at or above the participant count at the moment of the write.
func (e *Engine) Update(ctx context.Context, actor models.Actor, id primitive.ObjectID, ch Changes) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	cur, err := e.load(ctx, actor, id)
	if err != nil {
		return models.Challenge{}, err
	}
	if !challengepolicy.CanEdit(actor, cur) {
		return models.Challenge{}, apperr.Forbidden("only the owner can edit challenge %s", id.Hex())
	}
	if !cur.Status.Live() {
		return models.Challenge{}, apperr.InvalidState("challenge %s is %s; only pending or approved challenges can be edited", id.Hex(), cur.Status)
	}
	p, err := ch.patch(cur, time.Now().UTC())
	if err != nil {
		return models.Challenge{}, err
	}

	c, err := e.challenges.Update(ctx, id, p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Lost a race with a transition or an admission; report the state
		// that blocked the write.
		now, lerr := e.load(ctx, actor, id)
		if lerr != nil {
			return models.Challenge{}, lerr
		}
		if !now.Status.Live() {
			return models.Challenge{}, apperr.InvalidState("challenge %s is %s; only pending or approved challenges can be edited", id.Hex(), now.Status)
		}
		if p.Capacity != nil && *p.Capacity < now.ParticipantCount {
			return models.Challenge{}, capacityBelowCount(*p.Capacity, now.ParticipantCount)
		}
		return models.Challenge{}, apperr.Internal("update challenge", err)
	}
	if err != nil {
		return models.Challenge{}, apperr.Internal("update challenge", err)
	}

	e.notifier.Send(ctx, c.OwnerID, models.NotifyChallenge,
		fmt.Sprintf("Your challenge %s was updated.", label(c)))
	return c, nil
}
