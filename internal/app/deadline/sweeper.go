// Package deadline expires challenges whose deadline has passed.
//
// A sweep finds live challenges with deadline < now and moves each one to
// the deadline status with a compare-and-set that also marks its notices
// pending. Notices go out only after a second conditional update claims
// that mark, so running a sweep twice, or two sweeps at once, sends each
// participant one notice. A challenge whose notices could not be sent
// keeps its mark and a later sweep delivers them. A failure on one
// challenge is logged and counted; the sweep moves on.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"

	challengestore "github.com/dalemusser/docthrough/internal/app/store/challenges"
	"github.com/dalemusser/docthrough/internal/app/system/auditlog"
	"github.com/dalemusser/docthrough/internal/app/system/metrics"
	"github.com/dalemusser/docthrough/internal/app/system/notify"
	"github.com/dalemusser/docthrough/internal/app/system/retry"
	"github.com/dalemusser/docthrough/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultBatchSize bounds how many challenges one sweep looks at.
const DefaultBatchSize = 500

// ChallengeStore is the part of the challenges store a sweep needs.
type ChallengeStore interface {
	FindExpired(ctx context.Context, now time.Time, limit int64) ([]models.Challenge, error)
	Transition(ctx context.Context, id primitive.ObjectID, action models.ChallengeAction, ch challengestore.Change) (models.Challenge, error)
	FindPendingNotices(ctx context.Context, limit int64) ([]models.Challenge, error)
	ClaimNotices(ctx context.Context, id primitive.ObjectID, runID string) (models.Challenge, error)
}

// ParticipantSource lists the distinct authors of live final attends.
type ParticipantSource interface {
	DistinctParticipants(ctx context.Context, challengeID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Config tunes a Sweeper. Zero values pick defaults.
type Config struct {
	BatchSize     int64
	RetryAttempts int
	Audit         *auditlog.Logger
	Metrics       *metrics.Metrics
}

type Sweeper struct {
	challenges   ChallengeStore
	participants ParticipantSource
	notifier     *notify.Notifier
	audit        *auditlog.Logger
	metrics      *metrics.Metrics
	log          *zap.Logger
	batch        int64
	attempts     int
}

func New(challenges ChallengeStore, participants ParticipantSource, notifier *notify.Notifier, log *zap.Logger, cfg Config) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Sweeper{
		challenges:   challenges,
		participants: participants,
		notifier:     notifier,
		audit:        cfg.Audit,
		metrics:      cfg.Metrics,
		log:          log,
		batch:        cfg.BatchSize,
		attempts:     cfg.RetryAttempts,
	}
}

// Result summarises one sweep.
type Result struct {
	RunID string
	// Found is how many expired challenges the query returned.
	Found int
	// Expired is how many this sweep moved to the deadline status.
	Expired int
	// Skipped counts challenges another actor transitioned first.
	Skipped int
	// Failed counts challenges whose processing returned an error.
	Failed int
	// Recovered counts challenges expired earlier whose notices this sweep
	// delivered.
	Recovered int
	// Notified is the number of deadline notices delivered.
	Notified int
}

// Sweep runs one tick. The returned error is set only when the expired
// challenges could not be listed; per-challenge failures are in Result.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	log := s.log.With(zap.String("run_id", res.RunID))

	var expired []models.Challenge
	err := retry.Do(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		expired, err = s.challenges.FindExpired(ctx, now, s.batch)
		return err
	})
	if err != nil {
		s.metrics.Sweep(time.Since(start), 0)
		return res, fmt.Errorf("find expired challenges: %w", err)
	}
	res.Found = len(expired)

	failed := make(map[primitive.ObjectID]bool)
	for _, c := range expired {
		if ctx.Err() != nil {
			break
		}
		won, sent, err := s.expire(ctx, c, res.RunID)
		switch {
		case err != nil:
			failed[c.ID] = true
			res.Failed++
			log.Error("deadline sweep failed for challenge",
				zap.String("challenge_id", c.ID.Hex()),
				zap.Error(err))
		case !won:
			res.Skipped++
		default:
			res.Expired++
		}
		res.Notified += sent
	}

	// Notices left pending by an earlier failure, or by a transition that
	// applied although its call reported an error. Challenges that already
	// failed in this run wait for the next one.
	var pending []models.Challenge
	if ctx.Err() == nil {
		err = retry.Do(ctx, s.attempts, func(ctx context.Context) error {
			var err error
			pending, err = s.challenges.FindPendingNotices(ctx, s.batch)
			return err
		})
		if err != nil {
			res.Failed++
			log.Error("deadline sweep could not list pending notices", zap.Error(err))
		}
	}
	for _, c := range pending {
		if ctx.Err() != nil || failed[c.ID] {
			continue
		}
		claimed, sent, err := s.notify(ctx, c, res.RunID)
		if err != nil {
			res.Failed++
			log.Error("deadline notices failed for challenge",
				zap.String("challenge_id", c.ID.Hex()),
				zap.Error(err))
			continue
		}
		if claimed {
			res.Recovered++
		}
		res.Notified += sent
	}

	s.metrics.Sweep(time.Since(start), res.Failed)
	s.metrics.DeadlineNotices(res.Notified)
	if res.Found > 0 || res.Recovered > 0 {
		log.Info("deadline sweep finished",
			zap.Int("found", res.Found),
			zap.Int("expired", res.Expired),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed),
			zap.Int("recovered", res.Recovered),
			zap.Int("notified", res.Notified),
			zap.Duration("took", time.Since(start)))
	}
	return res, ctx.Err()
}

// expire transitions one challenge and, if this call made the transition,
// sends its notices. won is false when the challenge had already left the
// live states.
func (s *Sweeper) expire(ctx context.Context, c models.Challenge, runID string) (won bool, sent int, err error) {
	err = retry.Do(ctx, s.attempts, func(ctx context.Context) error {
		_, err := s.challenges.Transition(ctx, c.ID, models.ActionDeadline, challengestore.Change{Reason: c.Reason})
		return err
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("transition: %w", err)
	}
	s.metrics.Transition(string(models.ChallengeDeadline))

	_, sent, err = s.notify(ctx, c, runID)
	return true, sent, err
}

// notify lists the challenge's participants, claims its pending notices and
// sends them. Participants are listed before the claim so a failed read
// leaves the notices pending. claimed is false when another sweep got there
// first.
func (s *Sweeper) notify(ctx context.Context, c models.Challenge, runID string) (claimed bool, sent int, err error) {
	var ids []primitive.ObjectID
	err = retry.Do(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		ids, err = s.participants.DistinctParticipants(ctx, c.ID)
		return err
	})
	if err != nil {
		return false, 0, fmt.Errorf("list participants: %w", err)
	}

	var after models.Challenge
	err = retry.Do(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		after, err = s.challenges.ClaimNotices(ctx, c.ID, runID)
		return err
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("claim notices: %w", err)
	}

	s.audit.ChallengeExpired(ctx, c.ID, runID, len(ids))
	msg := fmt.Sprintf("Challenge #%d %q reached its deadline and is closed.", after.Seq, after.Title)
	return true, s.notifier.SendAll(ctx, ids, models.NotifyDeadline, msg), nil
}
