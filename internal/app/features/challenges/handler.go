// internal/app/features/challenges/handler.go
package challenges

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/lifecycle"
	"github.com/dalemusser/docthrough/internal/app/participation"
	"github.com/dalemusser/docthrough/internal/app/store/audit"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the challenges feature.
type Handler struct {
	Lifecycle     *lifecycle.Engine
	Participation *participation.Gate
	Audit         *audit.Store
	Log           *zap.Logger
}

// NewHandler constructs a challenges Handler. It is called from the
// bootstrap BuildHandler function once the engines exist.
func NewHandler(engine *lifecycle.Engine, gate *participation.Gate, auditStore *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Lifecycle:     engine,
		Participation: gate,
		Audit:         auditStore,
		Log:           logger,
	}
}

// challengeID parses the {id} URL parameter and answers 400 when it is not
// an ObjectID.
func challengeID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.BadRequest(w, "bad challenge id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// decode reads a JSON body of at most limit bytes into v. An empty body
// leaves v untouched.
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
