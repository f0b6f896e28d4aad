// internal/app/features/challenges/attends.go
package challenges

import (
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/participation"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/limits"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
)

// HandleSubmit handles POST /challenges/{id}/attends with
// {"title": "...", "content": "...", "is_draft": false}.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var in participation.Submission
	if !decode(w, r, limits.MaxDocumentBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "submit attend")
	defer cancel()

	a, err := h.Participation.Submit(ctx, authz.ActorFromRequest(r), id, in)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, a)
}

// ServeAttends handles GET /challenges/{id}/attends.
func (h *Handler) ServeAttends(w http.ResponseWriter, r *http.Request) {
	h.serveAttendPage(w, r, false)
}

// ServeDrafts handles GET /challenges/{id}/drafts: the caller's own drafts.
func (h *Handler) ServeDrafts(w http.ResponseWriter, r *http.Request) {
	h.serveAttendPage(w, r, true)
}

func (h *Handler) serveAttendPage(w http.ResponseWriter, r *http.Request, drafts bool) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	p, err := paging.ParseParams(r)
	if err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list attends")
	defer cancel()

	actor := authz.ActorFromRequest(r)
	list := h.Participation.ListByChallenge
	if drafts {
		list = h.Participation.ListDrafts
	}
	page, err := list(ctx, actor, id, p)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, page)
}
