// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	attendsfeature "github.com/dalemusser/docthrough/internal/app/features/attends"
	challengesfeature "github.com/dalemusser/docthrough/internal/app/features/challenges"
	errorsfeature "github.com/dalemusser/docthrough/internal/app/features/errors"
	healthfeature "github.com/dalemusser/docthrough/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/docthrough/internal/app/features/notifications"
	"github.com/dalemusser/docthrough/internal/app/system/auth"
	"github.com/dalemusser/docthrough/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the engines in deps.Services exist.
//
// Every route except /health and /metrics requires the session cookie the
// sign-in service issues.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	var writes *ratelimit.Limiter
	if appCfg.WriteRateLimit > 0 {
		writes = ratelimit.New(appCfg.WriteRateLimit, time.Minute)
	}
	return newRouter(deps, sessionMgr, writes, appCfg.MetricsEnabled, logger), nil
}

func newRouter(deps DBDeps, sessionMgr *auth.SessionManager, writes *ratelimit.Limiter, metricsEnabled bool, logger *zap.Logger) chi.Router {
	svc := deps.Services
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Everything below reads the session user.
	r.Group(func(ar chi.Router) {
		ar.Use(sessionMgr.LoadSessionUser)

		challengesHandler := challengesfeature.NewHandler(svc.Lifecycle, svc.Participation, svc.Audit, logger)
		ar.Mount("/challenges", challengesfeature.Routes(challengesHandler, sessionMgr, writes))

		attendsHandler := attendsfeature.NewHandler(svc.Participation, logger)
		ar.Mount("/attends", attendsfeature.Routes(attendsHandler, sessionMgr, writes))

		notificationsHandler := notificationsfeature.NewHandler(deps.MongoDatabase, logger)
		ar.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))
	})

	return r
}
