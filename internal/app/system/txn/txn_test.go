package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/docthrough/internal/app/system/txn"
	"github.com/dalemusser/docthrough/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection refused"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"code 51", mongo.CommandError{Code: 51}, true},
		{"code 263", mongo.CommandError{Code: 263}, true},
		{"other code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped code 20", errors.Join(errors.New("submit"), mongo.CommandError{Code: 20}), true},
		{"replica set message", errors.New("Transaction requires a REPLICA SET"), true},
		{"sessions not supported", errors.New("sessions are not supported by this server"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_Commits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_units")
	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"n": 1}); err != nil {
			return err
		}
		_, err := coll.InsertOne(ctx, bson.M{"n": 2})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestRun_ErrorIsReturnedAndRolledBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_units")
	// Create the collection up front; implicit creation inside a transaction
	// is not allowed on older servers.
	if _, err := coll.InsertOne(ctx, bson.M{"seed": true}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("boom")
	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"n": 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want boom", err)
	}

	if txn.Fallback() {
		t.Skip("deployment has no transactions; rollback not observable")
	}
	n, err := coll.CountDocuments(ctx, bson.M{"n": 1})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("aborted insert is visible (count=%d)", n)
	}
}
