// internal/app/features/attends/handler.go
package attends

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/participation"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Participation *participation.Gate
	Log           *zap.Logger
}

func NewHandler(gate *participation.Gate, logger *zap.Logger) *Handler {
	return &Handler{Participation: gate, Log: logger}
}

func attendID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.BadRequest(w, "bad submission id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		uierrors.BadRequest(w, "malformed JSON body")
		return false
	}
	return true
}
