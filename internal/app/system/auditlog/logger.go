// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/docthrough/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Moderation controls approve/reject/cancel/delete events.
	Moderation string
	// System controls scheduled transitions such as deadline expiry.
	System string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// ValidSetting reports whether s is one of all, db, log, off.
func ValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
	}
	if event.ChallengeID != nil {
		fields = append(fields, zap.String("challenge_id", event.ChallengeID.Hex()))
	}
	if event.AttendID != nil {
		fields = append(fields, zap.String("attend_id", event.AttendID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	l.zapLog.Info("audit event", fields...)
}

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op. Store failures are logged, never returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := All
	switch event.Category {
	case audit.CategoryModeration:
		setting = l.config.Moderation
	case audit.CategorySystem:
		setting = l.config.System
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) moderation(ctx context.Context, eventType string, challengeID, actorID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryModeration,
		EventType:   eventType,
		ChallengeID: &challengeID,
		ActorID:     &actorID,
		Reason:      reason,
	})
}

func (l *Logger) ChallengeApproved(ctx context.Context, challengeID, actorID primitive.ObjectID) {
	l.moderation(ctx, audit.EventChallengeApproved, challengeID, actorID, "")
}

func (l *Logger) ChallengeRejected(ctx context.Context, challengeID, actorID primitive.ObjectID, reason string) {
	l.moderation(ctx, audit.EventChallengeRejected, challengeID, actorID, reason)
}

func (l *Logger) ChallengeCancelled(ctx context.Context, challengeID, actorID primitive.ObjectID) {
	l.moderation(ctx, audit.EventChallengeCancelled, challengeID, actorID, "")
}

func (l *Logger) ChallengeDeleted(ctx context.Context, challengeID, actorID primitive.ObjectID, reason string) {
	l.moderation(ctx, audit.EventChallengeDeleted, challengeID, actorID, reason)
}

// ChallengeHardDeleted records an irreversible removal and how many
// submissions went with it.
func (l *Logger) ChallengeHardDeleted(ctx context.Context, challengeID, actorID primitive.ObjectID, attendsRemoved int) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryModeration,
		EventType:   audit.EventChallengeHardDeleted,
		ChallengeID: &challengeID,
		ActorID:     &actorID,
		Details:     map[string]string{"attends_removed": strconv.Itoa(attendsRemoved)},
	})
}

func (l *Logger) AttendDeleted(ctx context.Context, attendID, challengeID, actorID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategoryModeration,
		EventType:   audit.EventAttendDeleted,
		ChallengeID: &challengeID,
		AttendID:    &attendID,
		ActorID:     &actorID,
		Reason:      reason,
	})
}

// ChallengeExpired records a deadline transition made by the sweeper.
func (l *Logger) ChallengeExpired(ctx context.Context, challengeID primitive.ObjectID, runID string, participants int) {
	l.Log(ctx, audit.Event{
		Category:    audit.CategorySystem,
		EventType:   audit.EventChallengeExpired,
		ChallengeID: &challengeID,
		Details: map[string]string{
			"run_id":       runID,
			"participants": strconv.Itoa(participants),
		},
	})
}
