// internal/app/features/challenges/audit.go
package challenges

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/store/audit"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const defaultAuditLimit = 50

// ServeAudit handles GET /challenges/{id}/audit (admin): the challenge's
// moderation and expiry events, newest first.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	limit := int64(defaultAuditLimit)
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			uierrors.BadRequest(w, "limit must be a positive number")
			return
		}
		limit = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "challenge audit")
	defer cancel()

	events, err := h.Audit.ForChallenge(ctx, id, limit)
	if err != nil {
		h.Log.Error("audit query failed", zap.String("challenge_id", id.Hex()), zap.Error(err))
		uierrors.WriteKind(w, http.StatusInternalServerError, "internal", "an internal error occurred")
		return
	}
	uierrors.JSON(w, http.StatusOK, struct {
		Items []audit.Event `json:"items"`
	}{Items: events})
}
