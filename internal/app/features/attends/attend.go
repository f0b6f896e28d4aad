// internal/app/features/attends/attend.go
package attends

import (
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/participation"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/limits"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/docthrough/internal/domain/models"
)

// attendView is a submission with its like summary for the caller.
type attendView struct {
	models.Attend
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

// ServeAttend handles GET /attends/{id}.
func (h *Handler) ServeAttend(w http.ResponseWriter, r *http.Request) {
	id, ok := attendID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get attend")
	defer cancel()

	actor := authz.ActorFromRequest(r)
	a, err := h.Participation.Get(ctx, actor, id)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	view := attendView{Attend: a}
	if !a.IsDraft && !a.IsDeleted {
		if view.Likes, err = h.Participation.LikeCount(ctx, actor, id); err != nil {
			uierrors.Write(w, r, h.Log, err)
			return
		}
		if view.Liked, err = h.Participation.Liked(ctx, actor, id); err != nil {
			uierrors.Write(w, r, h.Log, err)
			return
		}
	}
	uierrors.JSON(w, http.StatusOK, view)
}

// HandleUpdate handles PATCH /attends/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := attendID(w, r)
	if !ok {
		return
	}
	var in participation.Changes
	if !decode(w, r, limits.MaxDocumentBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update attend")
	defer cancel()

	a, err := h.Participation.Update(ctx, authz.ActorFromRequest(r), id, in)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, a)
}

// HandleDelete handles DELETE /attends/{id} with an optional
// {"reason": "..."}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := attendID(w, r)
	if !ok {
		return
	}
	var in struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, limits.MaxSmallBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete attend")
	defer cancel()

	a, err := h.Participation.SoftDelete(ctx, authz.ActorFromRequest(r), id, in.Reason)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, a)
}
