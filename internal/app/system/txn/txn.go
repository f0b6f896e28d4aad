// Package txn runs a unit of work inside a MongoDB multi-document transaction.
//
// Transactions need a replica set or sharded cluster. On a standalone server
// (local development, some test setups) Run logs a warning and executes the
// unit without a transaction, so callers must keep their invariants with
// unique indexes and conditional updates and use the transaction only to make
// the unit all-or-nothing when the deployment supports it.
package txn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

var (
	warnOnce    sync.Once
	unsupported atomic.Bool
)

// Fallback reports whether Run has detected that the deployment cannot run
// transactions and now executes units directly.
func Fallback() bool { return unsupported.Load() }

// Run executes fn in a transaction. fn must use the ctx it is given so its
// operations join the session. A non-nil error from fn aborts the
// transaction and is returned unchanged.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	if unsupported.Load() {
		return fn(ctx)
	}
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithout(ctx, log, err, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	if err != nil && IsNotSupported(err) {
		return runWithout(ctx, log, err, fn)
	}
	return err
}

func runWithout(ctx context.Context, log *zap.Logger, cause error, fn func(ctx context.Context) error) error {
	unsupported.Store(true)
	warnOnce.Do(func() {
		if log != nil {
			log.Warn("transactions not supported by this deployment; running units without them",
				zap.Error(cause))
		}
	})
	return fn(ctx)
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, unsupported command inside a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation: transaction numbers need a replica set member
			51,  // ex: unsupported operation
			263: // OperationNotSupportedInTransaction
			return true
		}
	}
	s := strings.ToLower(err.Error())
	hasTxn := strings.Contains(s, "transaction")
	switch {
	case hasTxn && strings.Contains(s, "replica set"):
		return true
	case hasTxn && strings.Contains(s, "session"):
		return true
	case hasTxn && strings.Contains(s, "illegal operation"):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	}
	return false
}
