package lifecycle

import (
	"context"

	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Get returns one challenge. Soft-deleted challenges are NotFound for
// everyone but admins.
func (e *Engine) Get(ctx context.Context, actor models.Actor, id primitive.ObjectID) (models.Challenge, error) {
	if err := requireActor(actor); err != nil {
		return models.Challenge{}, err
	}
	return e.load(ctx, actor, id)
}

// List returns one page of challenges, newest first. Only admins may ask
// for deleted challenges.
func (e *Engine) List(ctx context.Context, actor models.Actor, f challengestore.ListFilter, p paging.Params) (paging.Page[models.Challenge], error) {
	if err := requireActor(actor); err != nil {
		return paging.Page[models.Challenge]{}, err
	}
	if !actor.IsAdmin() {
		f.IncludeDeleted = false
	}
	rows, err := e.challenges.List(ctx, f, p)
	if err != nil {
		return paging.Page[models.Challenge]{}, apperr.Internal("list challenges", err)
	}
	return paging.Build(rows, p, func(c models.Challenge) primitive.ObjectID { return c.ID }), nil
}
