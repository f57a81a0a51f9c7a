// Package govern paces outbound requests toward the upstream server. The
// deployment model has no server-side rate limiting, so this is the only
// backpressure protecting it from bursty agent-driven call volume.
package govern

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/golovatskygroup/mcp-ado/internal/errs"
)

// Config bounds the outbound request stream.
type Config struct {
	// MaxInFlight is the concurrency ceiling toward the upstream.
	MaxInFlight int64 `yaml:"max_in_flight"`
	// RatePerSecond is the sustained request rate ceiling.
	RatePerSecond float64 `yaml:"rate_per_second"`
	// Burst is the instantaneous burst allowance on top of the rate.
	Burst int `yaml:"burst"`
	// AcquireWait bounds how long a caller may wait for a slot before
	// failing with a throttled error instead of queuing forever.
	AcquireWait time.Duration `yaml:"acquire_wait"`
}

// DefaultConfig returns the documented pacing defaults.
func DefaultConfig() Config {
	return Config{
		MaxInFlight:   8,
		RatePerSecond: 20,
		Burst:         40,
		AcquireWait:   10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = d.MaxInFlight
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = d.RatePerSecond
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.AcquireWait <= 0 {
		c.AcquireWait = d.AcquireWait
	}
	return c
}

// Governor enforces the concurrency and rate ceilings. Its counters are the
// only mutable state shared between concurrent tool invocations.
type Governor struct {
	cfg     Config
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// New creates a Governor; zero config fields fall back to defaults.
func New(cfg Config) *Governor {
	cfg = cfg.withDefaults()
	return &Governor{
		cfg:     cfg,
		sem:     semaphore.NewWeighted(cfg.MaxInFlight),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

// Acquire blocks until a request slot is available: in-flight count below
// the ceiling and the rolling rate under the limit. The returned release
// must be called on every exit path of the request it guards. Waiting is
// bounded by AcquireWait; exceeding it fails with a throttled error.
func (g *Governor) Acquire(ctx context.Context) (release func(), err error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.cfg.AcquireWait)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, errs.Transport(ctx.Err())
		}
		return nil, errs.Throttled("no request slot within %s (concurrency ceiling %d)", g.cfg.AcquireWait, g.cfg.MaxInFlight)
	}
	if err := g.limiter.Wait(waitCtx); err != nil {
		g.sem.Release(1)
		if ctx.Err() != nil {
			return nil, errs.Transport(ctx.Err())
		}
		return nil, errs.Throttled("rate ceiling %.0f/s not cleared within %s", g.cfg.RatePerSecond, g.cfg.AcquireWait)
	}
	return func() { g.sem.Release(1) }, nil
}
