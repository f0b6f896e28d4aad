// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/docthrough/internal/app/deadline"
	"github.com/dalemusser/docthrough/internal/app/lifecycle"
	"github.com/dalemusser/docthrough/internal/app/participation"
	attendstore "github.com/dalemusser/docthrough/internal/app/store/attends"
	"github.com/dalemusser/docthrough/internal/app/store/audit"
	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	notificationstore "github.com/dalemusser/docthrough/internal/app/store/notifications"
	"github.com/dalemusser/docthrough/internal/app/system/auditlog"
	"github.com/dalemusser/docthrough/internal/app/system/metrics"
	"github.com/dalemusser/docthrough/internal/app/system/notify"
	"github.com/dalemusser/docthrough/internal/app/system/tasks"
	"github.com/dalemusser/docthrough/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the engines and starts the background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	var reg prometheus.Registerer
	if appCfg.MetricsEnabled {
		reg = prometheus.DefaultRegisterer
	}
	svc, err := buildServices(deps, appCfg, logger, reg)
	if err != nil {
		return err
	}
	*deps.Services = *svc
	deps.Services.Scheduler.Start()

	logger.Info("background jobs started",
		zap.Duration("deadline_sweep_interval", appCfg.DeadlineSweepInterval),
		zap.Duration("notification_retention", appCfg.NotificationRetention))
	return nil
}

// buildServices wires stores, engines and jobs. reg may be nil to run
// without metrics. The scheduler is returned unstarted.
func buildServices(deps DBDeps, appCfg AppConfig, logger *zap.Logger, reg prometheus.Registerer) (*Services, error) {
	db := deps.MongoDatabase

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	auditStore := audit.New(db)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Moderation: appCfg.AuditLogModeration,
		System:     appCfg.AuditLogSystem,
	})

	inbox := notificationstore.New(db)
	notifier := notify.New(inbox, logger, m)

	sweeper := deadline.New(challengestore.New(db), attendstore.New(db), notifier, logger, deadline.Config{
		RetryAttempts: appCfg.RetryAttempts,
		Audit:         auditLog,
		Metrics:       m,
	})

	sched := tasks.NewScheduler(logger)
	if err := sched.Add(tasks.DeadlineSweepJob(sweeper, appCfg.DeadlineSweepInterval, timeouts.Sweep())); err != nil {
		return nil, fmt.Errorf("schedule deadline sweep: %w", err)
	}
	if err := sched.Add(tasks.NotificationCleanupJob(inbox, logger, appCfg.NotificationRetention)); err != nil {
		return nil, fmt.Errorf("schedule notification cleanup: %w", err)
	}

	return &Services{
		Lifecycle: lifecycle.New(db, notifier, auditLog, m, logger),
		Participation: participation.New(db, notifier, logger, participation.Config{
			RetryAttempts: appCfg.RetryAttempts,
			Audit:         auditLog,
			Metrics:       m,
		}),
		Audit:     auditStore,
		Metrics:   m,
		Scheduler: sched,
	}, nil
}
