package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"habitTrackerAPI/internal/logger"
)

// Job is one scheduled run. The context is cancelled on Stop or when the job's
// timeout elapses.
type Job func(ctx context.Context) error

// Scheduler runs background jobs on cron schedules in the app's time zone.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// cronLogger routes cron's own messages through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under a standard five-field spec or a descriptor such as
// "@every 1m".
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, timeout, job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	logger.Info("scheduled job", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, timeout time.Duration, job Job) {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		logger.Error("job failed", "job", name, "error", err, "elapsed", time.Since(start))
		return
	}
	logger.Debug("job finished", "job", name, "elapsed", time.Since(start))
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
