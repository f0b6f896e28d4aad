// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"go.uber.org/zap"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteKind writes an error body with an explicit status and kind.
func WriteKind(w http.ResponseWriter, status int, kind, msg string) {
	JSON(w, status, Response{Error: kind, Message: msg})
}

// Write renders an engine error. Unclassified errors are logged and
// answered with a generic message.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	WriteKind(w, Status(kind), string(kind), apperr.Message(err))
}

// BadRequest answers malformed input that never reached an engine.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteKind(w, http.StatusBadRequest, string(apperr.KindValidation), msg)
}
