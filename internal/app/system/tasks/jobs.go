// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/docthrough/internal/app/deadline"
	"go.uber.org/zap"
)

// Sweeper is the deadline sweep tick body.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (deadline.Result, error)
}

// NotificationPruner removes read notifications created before a cutoff.
type NotificationPruner interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeadlineSweepJob expires challenges whose deadline has passed. The first
// sweep runs at startup so a restart does not leave expired challenges open
// for a whole interval.
func DeadlineSweepJob(sw Sweeper, interval, timeout time.Duration) Job {
	return Job{
		Name:       "deadline-sweep",
		Interval:   interval,
		Timeout:    timeout,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			_, err := sw.Sweep(ctx, time.Now().UTC())
			return err
		},
	}
}

// NotificationCleanupJob removes read notifications older than retention.
func NotificationCleanupJob(pruner NotificationPruner, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "notification-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := pruner.DeleteReadBefore(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned read notifications",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
