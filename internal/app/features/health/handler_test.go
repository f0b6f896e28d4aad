package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/docthrough/internal/app/features/health"
	"github.com/dalemusser/docthrough/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", contentType, "application/json")
	}

	var response struct {
		Status       string `json:"status"`
		Database     string `json:"database"`
		Transactions string `json:"transactions"`
		Pending      *int64 `json:"pending_deadline_notices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("status: got %q, want %q", response.Status, "ok")
	}
	if response.Database != "connected" {
		t.Errorf("database: got %q, want %q", response.Database, "connected")
	}
	if response.Transactions != "enabled" && response.Transactions != "fallback" {
		t.Errorf("transactions: got %q", response.Transactions)
	}
	if response.Pending == nil || *response.Pending != 0 {
		t.Errorf("pending_deadline_notices: got %v, want 0", response.Pending)
	}
}
