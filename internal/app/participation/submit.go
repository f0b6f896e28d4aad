package participation

import (
	"context"
	"errors"
	"fmt"

	attendstore "github.com/dalemusser/docthrough/internal/app/store/attends"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docthrough/internal/app/system/inputval"
	"github.com/dalemusser/docthrough/internal/app/system/retry"
	"github.com/dalemusser/docthrough/internal/app/system/txn"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Submission is the input of Submit.
type Submission struct {
	Title   string `json:"title" validate:"max=200" label:"Title"`
	Content string `json:"content" label:"Content"`
	IsDraft bool   `json:"is_draft"`
}

// errNoSlot ends a submit unit whose slot reservation matched nothing.
var errNoSlot = errors.New("no participant slot")

// Submit stores a final attend or a draft for the actor. A final attend is
// admitted only while the challenge is approved, below capacity and without
// another live final by the same author.
func (g *Gate) Submit(ctx context.Context, actor models.Actor, challengeID primitive.ObjectID, s Submission) (models.Attend, error) {
	if err := requireActor(actor); err != nil {
		return models.Attend{}, err
	}
	s.Title = htmlsanitize.Text(s.Title)
	s.Content = htmlsanitize.Body(s.Content)
	if res := inputval.Validate(s); res.HasErrors() {
		return models.Attend{}, apperr.Validation("%s", res.All())
	}
	if !s.IsDraft && s.Content == "" {
		return models.Attend{}, apperr.Validation("Content is required.")
	}

	c, err := g.loadChallenge(ctx, actor, challengeID)
	if err != nil {
		return models.Attend{}, err
	}
	in := models.Attend{
		ChallengeID: challengeID,
		AuthorID:    actor.UserID,
		Title:       s.Title,
		Content:     s.Content,
		IsDraft:     s.IsDraft,
	}

	if s.IsDraft {
		return g.saveDraft(ctx, c, in)
	}
	if !c.OpenForSubmission() {
		g.metrics.Submission("closed")
		return models.Attend{}, closedError(c)
	}

	var out models.Attend
	err = retry.Do(ctx, g.attempts, func(ctx context.Context) error {
		return txn.Run(ctx, g.db, g.log, func(ctx context.Context) error {
			a, err := g.attends.Create(ctx, in)
			if err != nil {
				return err
			}
			ok, err := g.challenges.ReserveSlot(ctx, challengeID)
			if err != nil {
				return err
			}
			if !ok {
				if _, err := g.attends.Delete(ctx, a.ID); err != nil {
					return err
				}
				return errNoSlot
			}
			out = a
			return nil
		})
	})
	switch {
	case errors.Is(err, attendstore.ErrDuplicateFinal):
		g.metrics.Submission("conflict")
		return models.Attend{}, g.conflict(ctx, challengeID, actor.UserID)
	case errors.Is(err, errNoSlot):
		return models.Attend{}, g.admissionError(ctx, challengeID)
	case err != nil:
		g.metrics.Submission("error")
		return models.Attend{}, apperr.Internal("submit", err)
	}

	g.metrics.Submission("final")
	g.log.Info("submission accepted",
		zap.String("challenge_id", challengeID.Hex()),
		zap.String("attend_id", out.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()))
	g.notifier.Send(ctx, actor.UserID, models.NotifyAttend,
		fmt.Sprintf("Your submission %s to challenge #%d was received.", out.ID.Hex(), c.Seq))
	return out, nil
}

func (g *Gate) saveDraft(ctx context.Context, c models.Challenge, in models.Attend) (models.Attend, error) {
	a, err := g.attends.Create(ctx, in)
	if err != nil {
		g.metrics.Submission("error")
		return models.Attend{}, apperr.Internal("save draft", err)
	}
	// A hard delete may have removed the challenge since it was read.
	if _, err := g.challenges.GetByID(ctx, c.ID); errors.Is(err, mongo.ErrNoDocuments) {
		_, _ = g.attends.Delete(ctx, a.ID)
		return models.Attend{}, challengeNotFound(c.ID)
	}
	g.metrics.Submission("draft")
	g.notifier.Send(ctx, in.AuthorID, models.NotifyAttend,
		fmt.Sprintf("Draft %s for challenge #%d saved.", a.ID.Hex(), c.Seq))
	return a, nil
}

// conflict names the author's existing final attend.
func (g *Gate) conflict(ctx context.Context, challengeID, authorID primitive.ObjectID) error {
	existing, err := g.attends.FindFinal(ctx, challengeID, authorID)
	if err != nil {
		return apperr.Conflict("user %s already has a final submission for challenge %s", authorID.Hex(), challengeID.Hex())
	}
	return apperr.Conflict("user %s already has final submission %s for challenge %s",
		authorID.Hex(), existing.ID.Hex(), challengeID.Hex())
}

// admissionError explains why a slot reservation missed: the challenge left
// the approved state, or it is full.
func (g *Gate) admissionError(ctx context.Context, challengeID primitive.ObjectID) error {
	c, err := g.challenges.GetByID(ctx, challengeID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		g.metrics.Submission("closed")
		return challengeNotFound(challengeID)
	}
	if err != nil {
		g.metrics.Submission("error")
		return apperr.Internal("load challenge", err)
	}
	if !c.OpenForSubmission() {
		g.metrics.Submission("closed")
		return closedError(c)
	}
	g.metrics.Submission("full")
	return apperr.CapacityFull(challengeID.Hex(), c.ParticipantCount, c.Capacity)
}
