package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/docthrough/internal/app/features/errors"
	"github.com/dalemusser/docthrough/internal/app/system/apperr"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindUnauthenticated, http.StatusUnauthorized},
		{apperr.KindInvalidState, http.StatusConflict},
		{apperr.KindCapacityFull, http.StatusConflict},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindValidation, http.StatusUnprocessableEntity},
		{apperr.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := uierrors.Status(tt.kind); got != tt.want {
				t.Errorf("Status(%s) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
		wantMsg  string
	}{
		{"capacity", apperr.CapacityFull("c1", 2, 2), http.StatusConflict, "capacity_full", "challenge c1 is full: current=2, max=2"},
		{"internal hides cause", apperr.Internal("load", errors.New("socket closed")), http.StatusInternalServerError, "internal", "an internal error occurred"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal", "an internal error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/challenges", nil)
			uierrors.Write(rec, req, zap.NewNop(), tt.err)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body uierrors.Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantKind || body.Message != tt.wantMsg {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestNotFoundRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	uierrors.NewHandler().NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}
