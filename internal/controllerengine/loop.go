package controllerengine

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/robfig/cron/v3"
)

// LoopConfig configures Run's cadence. The poll period is exact by
// default; jitter is opt-in so the loop stays faithful to a plain
// fixed-interval sleep unless the operator asks for jitter.
type LoopConfig struct {
	// Period is the fixed poll period (default 5s). Ignored if Schedule
	// is set.
	Period time.Duration

	// JitterMax adds a uniform random [0, JitterMax) delay on top of
	// Period each iteration. Zero disables jitter.
	JitterMax time.Duration

	// Schedule is an optional cron expression (MNC_POLL_SCHEDULE); when
	// set it replaces the fixed-period timer entirely, modeled on the
	// teacher's geoip.Service cron-driven update schedule.
	Schedule string
}

// Run drives RunOnce on the configured cadence until ctx is cancelled. The
// first iteration fires immediately — there is no initial sleep — so the
// baseline snapshot gets established as soon as the loop starts.
func (c *Controller) Run(ctx context.Context, cfg LoopConfig) {
	if cfg.Schedule != "" {
		c.runCron(ctx, cfg.Schedule)
		return
	}
	c.runFixedPeriod(ctx, cfg.Period, cfg.JitterMax)
}

// runFixedPeriod is the teacher's internal/topology/loop.go runLoop pattern,
// generalized: jitter defaults to zero so the period is exact, but an
// operator-set JitterMax is honored the same way the teacher jitters its
// topology scan interval.
func (c *Controller) runFixedPeriod(ctx context.Context, period, jitterMax time.Duration) {
	if period <= 0 {
		period = 5 * time.Second
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		c.RunOnce(ctx)

		if ctx.Err() != nil {
			return
		}
		next := period
		if jitterMax > 0 {
			next += time.Duration(rand.Int64N(int64(jitterMax)))
		}
		timer.Reset(next)
	}
}

// runCron drives RunOnce on a cron schedule instead of a fixed period,
// grounded on the teacher's geoip.Service scheduled-update registration.
func (c *Controller) runCron(ctx context.Context, schedule string) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		log.Printf("[controller] invalid poll schedule %q, falling back to fixed period: %v", schedule, err)
		c.runFixedPeriod(ctx, 5*time.Second, 0)
		return
	}

	// First iteration fires immediately, same as the fixed-period loop.
	c.RunOnce(ctx)

	now := time.Now()
	for {
		next := sched.Next(now)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case now = <-timer.C:
		}
		c.RunOnce(ctx)
	}
}
