// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/docthrough/internal/app/system/apperr"
)

// Response is the JSON body of every error answer.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Status maps an engine error kind to an HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindInvalidState, apperr.KindCapacityFull, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Handler serves the router's fallback answers.
// No DB needed; it only writes JSON.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteKind(w, http.StatusNotFound, string(apperr.KindNotFound), "no such route: "+r.URL.Path)
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteKind(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
}
