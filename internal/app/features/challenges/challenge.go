// internal/app/features/challenges/challenge.go
package challenges

import (
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/lifecycle"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/limits"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
)

// HandlePropose handles POST /challenges.
func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.Proposal
	if !decode(w, r, limits.MaxDocumentBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "propose challenge")
	defer cancel()

	c, err := h.Lifecycle.Propose(ctx, authz.ActorFromRequest(r), in)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, c)
}

// ServeChallenge handles GET /challenges/{id}.
func (h *Handler) ServeChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get challenge")
	defer cancel()

	c, err := h.Lifecycle.Get(ctx, authz.ActorFromRequest(r), id)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, c)
}

// HandleUpdate handles PATCH /challenges/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var in lifecycle.Changes
	if !decode(w, r, limits.MaxDocumentBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update challenge")
	defer cancel()

	c, err := h.Lifecycle.Update(ctx, authz.ActorFromRequest(r), id, in)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, c)
}
