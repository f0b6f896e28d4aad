// internal/app/features/attends/social.go
package attends

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/limits"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// HandleToggleLike handles POST /attends/{id}/like. The response carries
// the outcome and the new count.
func (h *Handler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := attendID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "toggle like")
	defer cancel()

	actor := authz.ActorFromRequest(r)
	res, err := h.Participation.ToggleLike(ctx, actor, id)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	n, err := h.Participation.LikeCount(ctx, actor, id)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, struct {
		Result models.LikeResult `json:"result"`
		Likes  int64             `json:"likes"`
	}{Result: res, Likes: n})
}

// HandleFeedback handles POST /attends/{id}/feedbacks with
// {"content": "..."}.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := attendID(w, r)
	if !ok {
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if !decode(w, r, limits.MaxSmallBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add feedback")
	defer cancel()

	fb, err := h.Participation.AddFeedback(ctx, authz.ActorFromRequest(r), id, in.Content)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, fb)
}

// ServeFeedback handles GET /attends/{id}/feedbacks.
func (h *Handler) ServeFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := attendID(w, r)
	if !ok {
		return
	}
	var limit int64
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			uierrors.BadRequest(w, "limit must be a number")
			return
		}
		limit = n
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list feedback")
	defer cancel()

	items, err := h.Participation.ListFeedback(ctx, authz.ActorFromRequest(r), id, limit)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}
	uierrors.JSON(w, http.StatusOK, struct {
		Items []models.Feedback `json:"items"`
	}{Items: items})
}
