// Package notify delivers user notifications on a fire-and-forget basis.
//
// Callers hand a message to a Notifier after their own write has committed.
// A delivery failure is logged and counted but never returned: a lost
// notification must not undo the action that produced it.
package notify

import (
	"context"

	"github.com/dalemusser/docthrough/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sink persists or forwards a single notification.
type Sink interface {
	Notify(ctx context.Context, userID primitive.ObjectID, category, message string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, userID primitive.ObjectID, category, message string) error

func (f SinkFunc) Notify(ctx context.Context, userID primitive.ObjectID, category, message string) error {
	return f(ctx, userID, category, message)
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(context.Context, primitive.ObjectID, string, string) error {
	return nil
})

type Notifier struct {
	sink    Sink
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New wraps sink. A nil sink behaves like Discard; m may be nil.
func New(sink Sink, log *zap.Logger, m *metrics.Metrics) *Notifier {
	if sink == nil {
		sink = Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{sink: sink, log: log, metrics: m}
}

// Send delivers one notification and reports whether it succeeded.
func (n *Notifier) Send(ctx context.Context, userID primitive.ObjectID, category, message string) bool {
	if n == nil {
		return false
	}
	if err := n.sink.Notify(ctx, userID, category, message); err != nil {
		n.log.Warn("notification failed",
			zap.String("user_id", userID.Hex()),
			zap.String("category", category),
			zap.Error(err))
		n.metrics.NotificationFailure(category)
		return false
	}
	return true
}

// SendAll delivers the same message to each user and returns how many
// deliveries succeeded.
func (n *Notifier) SendAll(ctx context.Context, userIDs []primitive.ObjectID, category, message string) int {
	sent := 0
	for _, id := range userIDs {
		if n.Send(ctx, id, category, message) {
			sent++
		}
	}
	return sent
}
