// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie issued by the sign-in service
	SessionKey    string // Secret key the cookie is signed with
	SessionName   string // Cookie name (default: docthrough-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Background jobs
	DeadlineSweepInterval time.Duration
	NotificationRetention time.Duration

	// RetryAttempts bounds retries of writes that hit a transient error.
	RetryAttempts int

	// WriteRateLimit is the per-user budget of write requests per minute.
	WriteRateLimit int

	// Audit destinations: "all", "db", "log" or "off"
	AuditLogModeration string
	AuditLogSystem     string

	MetricsEnabled bool

	// Timeout overrides; zero keeps the default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
