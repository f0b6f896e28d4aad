// Package participation admits work submissions ("attends") to challenges
// and maintains the likes and feedback attached to them.
//
// Admission of a final attend is two writes inside one unit: the insert,
// guarded by a partial unique index on (challenge, author) for live finals,
// and a conditional increment of the challenge's participant count that only
// matches while the challenge is approved and below capacity. If the
// increment misses, the insert is undone. Drafts skip both checks.
package participation

import (
	"context"
	"errors"

	"github.com/dalemusser/docthrough/internal/app/policy/challengepolicy"
	attendstore "github.com/dalemusser/docthrough/internal/app/store/attends"
	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	feedbackstore "github.com/dalemusser/docthrough/internal/app/store/feedbacks"
	likestore "github.com/dalemusser/docthrough/internal/app/store/likes"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/auditlog"
	"github.com/dalemusser/docthrough/internal/app/system/metrics"
	"github.com/dalemusser/docthrough/internal/app/system/notify"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Config tunes a Gate. Zero values pick defaults.
type Config struct {
	RetryAttempts int
	Audit         *auditlog.Logger
	Metrics       *metrics.Metrics
}

type Gate struct {
	db         *mongo.Database
	challenges *challengestore.Store
	attends    *attendstore.Store
	likes      *likestore.Store
	feedbacks  *feedbackstore.Store
	notifier   *notify.Notifier
	audit      *auditlog.Logger
	metrics    *metrics.Metrics
	log        *zap.Logger
	attempts   int
}

func New(db *mongo.Database, notifier *notify.Notifier, log *zap.Logger, cfg Config) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		db:         db,
		challenges: challengestore.New(db),
		attends:    attendstore.New(db),
		likes:      likestore.New(db),
		feedbacks:  feedbackstore.New(db),
		notifier:   notifier,
		audit:      cfg.Audit,
		metrics:    cfg.Metrics,
		log:        log,
		attempts:   cfg.RetryAttempts,
	}
}

func requireActor(actor models.Actor) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated()
	}
	return nil
}

func attendNotFound(id primitive.ObjectID) error {
	return apperr.NotFound("submission %s not found", id.Hex())
}

func challengeNotFound(id primitive.ObjectID) error {
	return apperr.NotFound("challenge %s not found", id.Hex())
}

// loadChallenge reads a challenge the actor may see.
func (g *Gate) loadChallenge(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Challenge, error) {
	c, err := g.challenges.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Challenge{}, challengeNotFound(id)
	}
	if err != nil {
		return models.Challenge{}, apperr.Internal("load challenge", err)
	}
	if !challengepolicy.CanView(actor, c) {
		return models.Challenge{}, challengeNotFound(id)
	}
	return c, nil
}

// loadAttend reads an attend the actor may see.
func (g *Gate) loadAttend(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Attend, error) {
	a, err := g.attends.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Attend{}, attendNotFound(id)
	}
	if err != nil {
		return models.Attend{}, apperr.Internal("load submission", err)
	}
	if !challengepolicy.CanViewAttend(actor, a) {
		return models.Attend{}, attendNotFound(id)
	}
	return a, nil
}

// loadManaged reads a live attend the actor may change, and its challenge,
// which must be open. Drafts are held to that too.
func (g *Gate) loadManaged(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Attend, models.Challenge, error) {
	a, err := g.loadAttend(ctx, actor, id)
	if err != nil {
		return models.Attend{}, models.Challenge{}, err
	}
	if a.IsDeleted {
		return models.Attend{}, models.Challenge{}, attendNotFound(id)
	}
	if !challengepolicy.CanManageAttend(actor, a) {
		return models.Attend{}, models.Challenge{}, apperr.Forbidden("only the author or an admin can change submission %s", id.Hex())
	}
	c, err := g.loadChallenge(ctx, actor, a.ChallengeID)
	if err != nil {
		return models.Attend{}, models.Challenge{}, err
	}
	if !c.OpenForSubmission() {
		return models.Attend{}, models.Challenge{}, closedError(c)
	}
	return a, c, nil
}

func closedError(c models.Challenge) error {
	return apperr.InvalidState("challenge %s is %s; it is not open for submissions", c.ID.Hex(), c.Status)
}
