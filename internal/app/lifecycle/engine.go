// Package lifecycle owns challenge state transitions.
//
// Every transition is one compare-and-set on the stored status. When the
// conditional update matches nothing the engine re-reads the challenge to
// report NotFound, Forbidden or InvalidState; it never applies a partial
// change. Notifications and audit events follow a committed transition and
// never undo it.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

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

type Engine struct {
	db         *mongo.Database
	challenges *challengestore.Store
	attends    *attendstore.Store
	likes      *likestore.Store
	feedbacks  *feedbackstore.Store
	notifier   *notify.Notifier
	audit      *auditlog.Logger
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// New builds an Engine over db. notifier, audit and m may be nil.
func New(db *mongo.Database, notifier *notify.Notifier, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		db:         db,
		challenges: challengestore.New(db),
		attends:    attendstore.New(db),
		likes:      likestore.New(db),
		feedbacks:  feedbackstore.New(db),
		notifier:   notifier,
		audit:      audit,
		metrics:    m,
		log:        log,
	}
}

func notFound(id primitive.ObjectID) error {
	return apperr.NotFound("challenge %s not found", id.Hex())
}

// load reads a challenge the actor is allowed to see.
func (e *Engine) load(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Challenge, error) {
	c, err := e.challenges.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Challenge{}, notFound(id)
	}
	if err != nil {
		return models.Challenge{}, apperr.Internal("load challenge", err)
	}
	if c.Deleted() && !actor.IsAdmin() {
		return models.Challenge{}, notFound(id)
	}
	return c, nil
}

// transition applies action with a compare-and-set and classifies a miss.
func (e *Engine) transition(ctx context.Context, actor models.Actor, id primitive.ObjectID, action models.ChallengeAction, ch challengestore.Change) (models.Challenge, error) {
	c, err := e.challenges.Transition(ctx, id, action, ch)
	if err == nil {
		e.metrics.Transition(string(c.Status))
		e.log.Info("challenge transition",
			zap.String("challenge_id", id.Hex()),
			zap.String("status", string(c.Status)),
			zap.String("user_id", actor.UserID.Hex()))
		return c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Challenge{}, apperr.Internal("transition challenge", err)
	}
	cur, lerr := e.load(ctx, actor, id)
	if lerr != nil {
		return models.Challenge{}, lerr
	}
	return models.Challenge{}, apperr.InvalidState("challenge %s is %s; cannot %s", id.Hex(), cur.Status, action)
}

func requireActor(actor models.Actor) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated()
	}
	return nil
}

func label(c models.Challenge) string {
	return fmt.Sprintf("#%d %q", c.Seq, c.Title)
}
