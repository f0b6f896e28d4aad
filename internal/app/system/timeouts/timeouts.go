// Package timeouts holds the per-operation deadlines used by handlers,
// engines and background jobs.
//
//   - Ping: health checks
//   - Short: single-document reads
//   - Medium: lists and single-collection writes
//   - Long: transactional units touching several collections (submit,
//     soft delete with cascade, hard delete)
//   - Sweep: one deadline sweep tick
//
// Values are set once at startup through Configure (from app config).
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultSweep  = 2 * time.Minute
)

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Sweep  time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Sweep:  DefaultSweep,
	}
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Sweep() time.Duration  { return get(func(c Config) time.Duration { return c.Sweep }) }

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Configure overrides the non-zero values in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&cur.Ping, cfg.Ping)
	set(&cur.Short, cfg.Short)
	set(&cur.Medium, cfg.Medium)
	set(&cur.Long, cfg.Long)
	set(&cur.Sweep, cfg.Sweep)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "submit attend")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
