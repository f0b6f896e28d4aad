// internal/app/features/challenges/list.go
package challenges

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listFilter reads the list query string:
//
//	status=pending,approved   owner=me|<id>   field=web   q=guide   deleted=1
func listFilter(r *http.Request, actor models.Actor) (challengestore.ListFilter, string) {
	var f challengestore.ListFilter
	if s := query.Get(r, "status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			st := models.ChallengeStatus(strings.ToLower(strings.TrimSpace(part)))
			if !st.Valid() {
				return f, "unknown status " + part
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	switch owner := query.Get(r, "owner"); owner {
	case "":
	case "me":
		f.OwnerID = actor.UserID
	default:
		id, err := primitive.ObjectIDFromHex(owner)
		if err != nil {
			return f, "owner must be \"me\" or a user id"
		}
		f.OwnerID = id
	}
	f.Field = query.Get(r, "field")
	f.Search = query.Get(r, "q")
	f.IncludeDeleted = query.Get(r, "deleted") == "1"
	return f, ""
}

// ServeList handles GET /challenges.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	f, bad := listFilter(r, actor)
	if bad != "" {
		uierrors.BadRequest(w, bad)
		return
	}
	p, err := paging.ParseParams(r)
	if err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list challenges")
	defer cancel()

	page, err := h.Lifecycle.List(ctx, actor, f, p)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, page)
}
