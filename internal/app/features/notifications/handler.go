// internal/app/features/notifications/handler.go
package notifications

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	notificationstore "github.com/dalemusser/docthrough/internal/app/store/notifications"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"github.com/dalemusser/docthrough/internal/app/system/authz"
	"github.com/dalemusser/docthrough/internal/app/system/paging"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's notification inbox.
type Handler struct {
	Store *notificationstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: notificationstore.New(db), Log: logger}
}

type inbox struct {
	paging.Page[models.Notification]
	Unread int64 `json:"unread"`
}

// ServeList handles GET /notifications. unread=1 restricts the page to
// unread entries.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	p, err := paging.ParseParams(r)
	if err != nil {
		uierrors.BadRequest(w, err.Error())
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list notifications")
	defer cancel()

	rows, err := h.Store.ListByUser(ctx, actor.UserID, query.Get(r, "unread") == "1", p)
	if err != nil {
		uierrors.Write(w, r, h.Log, apperr.Internal("list notifications", err))
		return
	}
	unread, err := h.Store.CountUnread(ctx, actor.UserID)
	if err != nil {
		uierrors.Write(w, r, h.Log, apperr.Internal("count notifications", err))
		return
	}
	uierrors.JSON(w, http.StatusOK, inbox{
		Page:   paging.Build(rows, p, func(n models.Notification) primitive.ObjectID { return n.ID }),
		Unread: unread,
	})
}

// HandleRead handles POST /notifications/{id}/read.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.BadRequest(w, "bad notification id")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	err = h.Store.MarkRead(ctx, id, authz.ActorFromRequest(r).UserID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		uierrors.Write(w, r, h.Log, apperr.NotFound("notification %s not found", id.Hex()))
	case err != nil:
		uierrors.Write(w, r, h.Log, apperr.Internal("mark notification read", err))
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleReadAll handles POST /notifications/read-all.
func (h *Handler) HandleReadAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark all notifications read")
	defer cancel()

	n, err := h.Store.MarkAllRead(ctx, authz.ActorFromRequest(r).UserID)
	if err != nil {
		uierrors.Write(w, r, h.Log, apperr.Internal("mark all notifications read", err))
		return
	}
	uierrors.JSON(w, http.StatusOK, struct {
		Marked int64 `json:"marked"`
	}{Marked: n})
}
