// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/docthrough/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for docthrough.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: DOCTHROUGH_MONGO_URI, DOCTHROUGH_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "docthrough", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key shared with the sign-in service"},
	{Name: "session_name", Default: "docthrough-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Background jobs
	{Name: "deadline_sweep_interval", Default: "1h", Desc: "How often challenges past their deadline are expired"},
	{Name: "notification_retention", Default: "720h", Desc: "Read notifications older than this are pruned"},

	// Engines
	{Name: "retry_attempts", Default: 3, Desc: "Attempts for writes that fail with a transient MongoDB error"},
	{Name: "write_rate_limit", Default: 60, Desc: "Proposals, submissions, likes and feedback allowed per user per minute (0 disables)"},

	// Audit logging settings
	{Name: "audit_log_moderation", Default: "all", Desc: "Moderation event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_system", Default: "all", Desc: "Deadline expiry event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Observability
	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics on /metrics"},

	// Timeout overrides (blank keeps the built-in default)
	{Name: "timeout_short", Default: "", Desc: "Timeout for single-document operations (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "Timeout for lists and single-collection writes (e.g., 10s)"},
	{Name: "timeout_long", Default: "", Desc: "Timeout for multi-collection units (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, DOCTHROUGH_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DOCTHROUGH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		// Background jobs
		DeadlineSweepInterval: appValues.Duration("deadline_sweep_interval", time.Hour),
		NotificationRetention: appValues.Duration("notification_retention", 30*24*time.Hour),

		RetryAttempts:  appValues.Int("retry_attempts"),
		WriteRateLimit: appValues.Int("write_rate_limit"),

		// Audit logging
		AuditLogModeration: appValues.String("audit_log_moderation"),
		AuditLogSystem:     appValues.String("audit_log_system"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),

		// Timeouts
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here to catch configuration errors
// early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.DeadlineSweepInterval <= 0 {
		return fmt.Errorf("deadline_sweep_interval must be positive, got %s", appCfg.DeadlineSweepInterval)
	}
	if appCfg.NotificationRetention <= 0 {
		return fmt.Errorf("notification_retention must be positive, got %s", appCfg.NotificationRetention)
	}
	if appCfg.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", appCfg.RetryAttempts)
	}
	if appCfg.WriteRateLimit < 0 {
		return fmt.Errorf("write_rate_limit must not be negative, got %d", appCfg.WriteRateLimit)
	}
	for key, v := range map[string]string{
		"audit_log_moderation": appCfg.AuditLogModeration,
		"audit_log_system":     appCfg.AuditLogSystem,
	} {
		if !auditlog.ValidSetting(v) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}
	return nil
}
