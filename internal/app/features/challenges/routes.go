// internal/app/features/challenges/routes.go
package challenges

import (
	"github.com/dalemusser/docthrough/internal/app/system/auth"
	"github.com/dalemusser/docthrough/internal/app/system/ratelimit"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the challenge endpoints. writes throttles proposals and
// submissions per user; nil disables throttling.
func Routes(h *Handler, sm *auth.SessionManager, writes *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	// Everything under /challenges requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST + PROPOSE
		pr.Get("/", h.ServeList)
		pr.With(writes.Middleware).Post("/", h.HandlePropose)

		// VIEW + EDIT
		pr.Get("/{id}", h.ServeChallenge)
		pr.Patch("/{id}", h.HandleUpdate)

		// LIFECYCLE
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
		pr.Post("/{id}/cancel", h.HandleCancel)
		pr.Delete("/{id}", h.HandleSoftDelete)
		pr.Delete("/{id}/hard", h.HandleHardDelete)

		// SUBMISSIONS
		pr.Get("/{id}/attends", h.ServeAttends)
		pr.With(writes.Middleware).Post("/{id}/attends", h.HandleSubmit)
		pr.Get("/{id}/drafts", h.ServeDrafts)

		// AUDIT (admin)
		pr.With(sm.RequireRole(models.RoleAdmin)).Get("/{id}/audit", h.ServeAudit)
	})

	return r
}
