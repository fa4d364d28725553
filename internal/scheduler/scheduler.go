package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked on every interval.
type TickFunc func(ctx context.Context, tick time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
	TickOnStart  bool
}

// Scheduler drives fixed-interval execution of poll cycles. The next tick is
// scheduled from the interval boundary, not from when the previous tick
// finished: a slow tick drifts, it never overlaps.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function at each interval until ctx is
// cancelled. Tick errors are logged and the loop proceeds to the next tick.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.opts.TickOnStart {
		now := time.Now().UTC()
		s.logger.Info().Time("tick", now).Msg("executing startup tick")
		if err := tick(ctx, now); err != nil {
			s.logger.Error().Err(err).Time("tick", now).Msg("startup tick failed")
		}
	}

	next := NextTick(time.Now().UTC(), s.opts.Interval, s.opts.AlignToStart)
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = NextTick(time.Now().UTC(), s.opts.Interval, s.opts.AlignToStart)
			delay = time.Until(next)
		}

		timer := time.NewTimer(delay)
		s.logger.Debug().Time("next_tick", next).Msg("waiting for next tick")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		s.logger.Info().Time("tick", next).Msg("executing scheduled tick")
		if err := tick(ctx, next); err != nil {
			s.logger.Error().Err(err).Time("tick", next).Msg("tick execution failed")
		}

		next = next.Add(s.opts.Interval)
	}
}

// NextTick returns the next execution time after now. When align is set the
// tick snaps to the next interval boundary.
func NextTick(now time.Time, interval time.Duration, align bool) time.Time {
	if !align {
		return now.Add(interval)
	}
	boundary := now.Truncate(interval)
	if !boundary.After(now) {
		boundary = boundary.Add(interval)
	}
	return boundary
}
