package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs jobs on cron schedules. A job still running when its next
// tick fires is skipped, and a panicking job is recovered and logged.
type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Add registers job under spec. Accepted specs are standard five-field cron
// expressions and descriptors such as "@every 1m" or "@hourly".
func (s *Scheduler) Add(ctx context.Context, spec, name string, job func(ctx context.Context)) error {
	_, err := s.c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.log.Debug("job started", zap.String("job", name))
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.c.Start()
	s.log.Info("scheduler started")

	<-ctx.Done()

	s.log.Info("scheduler stopping")
	<-s.c.Stop().Done()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
