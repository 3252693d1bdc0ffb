package monitor

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultPollInterval = 30 * time.Second

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// PollFunc performs one monitoring pass: fetch current objects and evaluate
// them. It must not block on session transitions.
type PollFunc func(ctx context.Context) error

// PollerOpts configures the polling loop.
type PollerOpts struct {
	Interval time.Duration // fixed cadence; ignored when Cron is set
	Cron     string        // 5-field cron expression
	Out      io.Writer     // operator-visible progress; defaults to io.Discard
}

// RunPoller drives poll until ctx is cancelled. Poll errors are logged and do
// not stop the loop; a session that is not active is expected to surface as a
// benign error here.
func RunPoller(ctx context.Context, poll PollFunc, opts PollerOpts) error {
	if poll == nil {
		return fmt.Errorf("monitor: poll func is required")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Cron != "" {
		if _, err := cronParser.Parse(opts.Cron); err != nil {
			return fmt.Errorf("monitor: cron expression %q: %w", opts.Cron, err)
		}
		fmt.Fprintf(opts.Out, "Monitor polling on cron %q\n", opts.Cron)
	} else {
		if opts.Interval <= 0 {
			opts.Interval = defaultPollInterval
		}
		fmt.Fprintf(opts.Out, "Monitor polling every %s\n", opts.Interval)
	}

	for {
		if err := sleepUntilNext(ctx, opts); err != nil {
			return nil
		}
		if err := poll(ctx); err != nil {
			log.Printf("monitor: poll: %v", err)
		}
	}
}

// sleepUntilNext blocks until the next poll is due, returning ctx.Err() when
// cancelled first.
func sleepUntilNext(ctx context.Context, opts PollerOpts) error {
	d := opts.Interval
	if opts.Cron != "" {
		d = nextCronDuration(opts.Cron)
		if d <= 0 {
			d = time.Second
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}
