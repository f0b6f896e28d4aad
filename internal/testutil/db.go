package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoURI is used when DOCTHROUGH_TEST_MONGO_URI is unset.
const DefaultMongoURI = "mongodb://localhost:27017"

// TestContext returns a context bounded for one test step.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to the test MongoDB, creates a uniquely named
// database with all indexes in place and drops it when the test ends.
// The test is skipped when no server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("DOCTHROUGH_TEST_MONGO_URI")
	if uri == "" {
		uri = DefaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("mongo unavailable at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo unavailable at %s: %v", uri, err)
	}

	db := client.Database("docthrough_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	ictx, icancel := TestContext()
	defer icancel()
	if err := indexes.EnsureAll(ictx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}
