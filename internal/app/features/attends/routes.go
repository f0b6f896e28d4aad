// internal/app/features/attends/routes.go
package attends

import (
	"github.com/dalemusser/docthrough/internal/app/system/auth"
	"github.com/dalemusser/docthrough/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager, writes *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/{id}", h.ServeAttend)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		pr.With(writes.Middleware).Post("/{id}/like", h.HandleToggleLike)

		pr.Get("/{id}/feedbacks", h.ServeFeedback)
		pr.With(writes.Middleware).Post("/{id}/feedbacks", h.HandleFeedback)
	})

	return r
}
