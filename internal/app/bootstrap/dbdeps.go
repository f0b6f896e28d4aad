// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/docthrough/internal/app/lifecycle"
	"github.com/dalemusser/docthrough/internal/app/participation"
	"github.com/dalemusser/docthrough/internal/app/store/audit"
	"github.com/dalemusser/docthrough/internal/app/system/metrics"
	"github.com/dalemusser/docthrough/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Services is filled in by Startup. The hooks receive DBDeps by value,
	// so the engines travel behind a pointer.
	Services *Services
}

// Services are the engines and background jobs built once at startup.
type Services struct {
	Lifecycle     *lifecycle.Engine
	Participation *participation.Gate
	Audit         *audit.Store
	Metrics       *metrics.Metrics
	Scheduler     *tasks.Scheduler
}
