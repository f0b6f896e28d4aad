// Package retry re-runs store operations that failed for transient reasons.
//
// Only contention and connectivity failures are retried: network errors,
// timeouts, write conflicts and errors labelled TransientTransactionError or
// UnknownTransactionCommitResult. Business-rule errors are returned at once.
package retry

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultAttempts is used when a caller passes attempts < 1.
const DefaultAttempts = 3

// baseDelay is the pause before the second attempt; it doubles each time.
var baseDelay = 20 * time.Millisecond

// Do calls fn until it succeeds, returns a non-transient error, ctx is done
// or attempts are exhausted. It returns fn's last error.
func Do(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	delay := baseDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var le mongo.LabeledError
	if errors.As(err, &le) {
		if le.HasErrorLabel("TransientTransactionError") || le.HasErrorLabel("UnknownTransactionCommitResult") {
			return true
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 112 { // WriteConflict
		return true
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 112 {
				return true
			}
		}
	}
	return false
}
