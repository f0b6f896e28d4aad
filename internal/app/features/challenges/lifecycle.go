// internal/app/features/challenges/lifecycle.go
package challenges

import (
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/limits"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/docthrough/internal/domain/models"
)

type reasonBody struct {
	Reason string `json:"reason"`
}

// HandleApprove handles POST /challenges/{id}/approve (admin).
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "approve challenge")
	defer cancel()

	c, err := h.Lifecycle.Approve(ctx, authz.ActorFromRequest(r), id)
	h.respond(w, r, c, err)
}

// HandleReject handles POST /challenges/{id}/reject (admin) with
// {"reason": "..."}.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var in reasonBody
	if !decode(w, r, limits.MaxSmallBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "reject challenge")
	defer cancel()

	c, err := h.Lifecycle.Reject(ctx, authz.ActorFromRequest(r), id, in.Reason)
	h.respond(w, r, c, err)
}

// HandleCancel handles POST /challenges/{id}/cancel (owner).
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "cancel challenge")
	defer cancel()

	c, err := h.Lifecycle.Cancel(ctx, authz.ActorFromRequest(r), id)
	h.respond(w, r, c, err)
}

// HandleSoftDelete handles DELETE /challenges/{id} (owner or admin) with
// an optional {"reason": "..."}.
func (h *Handler) HandleSoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var in reasonBody
	if !decode(w, r, limits.MaxSmallBody, &in) {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete challenge")
	defer cancel()

	c, err := h.Lifecycle.SoftDelete(ctx, authz.ActorFromRequest(r), id, in.Reason)
	h.respond(w, r, c, err)
}

// HandleHardDelete handles DELETE /challenges/{id}/hard (admin).
func (h *Handler) HandleHardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "hard delete challenge")
	defer cancel()

	res, err := h.Lifecycle.HardDelete(ctx, authz.ActorFromRequest(r), id)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, struct {
		ID      string `json:"id"`
		Deleted any    `json:"deleted"`
	}{ID: id.Hex(), Deleted: res})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, c models.Challenge, err error) {
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, c)
}
