package health

import (
	"context"
	"encoding/json"
	"net/http"

	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/docthrough/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Challenges *challengestore.Store
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Challenges: challengestore.New(db),
		Log:        logger,
	}
}

type report struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	Transactions   string `json:"transactions,omitempty"`
	PendingNotices *int64 `json:"pending_deadline_notices,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Serve handles GET /health. It answers 503 when the primary does not
// answer a ping. transactions is "fallback" once the server has refused a
// transaction. pending_deadline_notices counts expired challenges whose
// participants have not been told yet; it is omitted if the count fails.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if err := h.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(report{
			Status:   "error",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	rep := report{Status: "ok", Database: "connected", Transactions: "enabled"}
	if txn.Fallback() {
		rep.Transactions = "fallback"
	}
	if n, err := h.Challenges.CountPendingNotices(ctx); err != nil {
		h.Log.Warn("health: count pending deadline notices", zap.Error(err))
	} else {
		rep.PendingNotices = &n
	}
	_ = json.NewEncoder(w).Encode(rep)
}
