package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsRanker/internal/ports"
)

// CronScheduler fires jobs on a standard five-field cron expression. A run
// that is still in progress when the next tick arrives causes that tick to be skipped.
type CronScheduler struct {
	expr     string
	location *time.Location
	runFirst bool
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	first   *sync.WaitGroup
	stopped chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates the cron expression and binds it to loc (UTC when nil). When
// runFirst is set the job also fires once as soon as Start is called.
func NewCronScheduler(expr string, loc *time.Location, runFirst bool, logger *slog.Logger) (*CronScheduler, error) {
	if _, err := cron.ParseStandard(expr); err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{
		expr:     expr,
		location: loc,
		runFirst: runFirst,
		logger:   logger,
	}, nil
}

// Start registers job and begins the cron loop. It stops on its own when ctx ends.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	logger := cronLogger{logger: c.logger}
	runner := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)

	// the first run and the ticks share one wrapper so they never overlap
	wrapped := cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		job(time.Now().In(c.location))
	}))
	if _, err := runner.AddJob(c.expr, wrapped); err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	first := &sync.WaitGroup{}
	stopped := make(chan struct{})
	c.cron, c.first, c.stopped = runner, first, stopped
	runner.Start()
	c.debug("cron started", "expression", c.expr, "location", c.location.String())

	if c.runFirst {
		first.Add(1)
		go func() {
			defer first.Done()
			wrapped.Run()
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-stopped:
		}
	}()

	return nil
}

// Stop halts scheduling and waits, until ctx expires, for every running job
// including the initial run. Concurrent callers all wait for the same shutdown.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner, first, stopped := c.cron, c.first, c.stopped
	c.cron = nil
	c.mu.Unlock()

	if stopped == nil {
		return nil
	}

	if runner != nil {
		go func() {
			<-runner.Stop().Done()
			first.Wait()
			c.debug("cron stopped")
			close(stopped)
		}()
	}

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

func (c *CronScheduler) debug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, args...)
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
}
