// Package scheduler triggers dispatch runs on a cron schedule in-process.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports whether spec is a five-field cron expression or a
// descriptor such as "@daily".
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Scheduler runs registered jobs on one shared schedule. A run that is still
// going when the next tick fires is skipped.
type Scheduler struct {
	spec   string
	loc    *time.Location
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
}

// New builds a scheduler evaluating spec in loc.
func New(spec string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger}
	return &Scheduler{
		spec:   spec,
		loc:    loc,
		logger: logger,
		ctx:    context.Background(),
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}, nil
}

// Add registers job under name.
func (s *Scheduler) Add(name string, job Job) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		start := time.Now()
		s.logger.Info("scheduled run starting", slog.String("job", name))
		if err := job(s.ctx); err != nil {
			s.logger.Error("scheduled run failed",
				slog.String("job", name),
				slog.String("error", err.Error()))
			return
		}
		s.logger.Info("scheduled run finished",
			slog.String("job", name),
			slog.Duration("elapsed", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// Next returns the next activation time after now, evaluated in the
// scheduler's location.
func (s *Scheduler) Next(now time.Time) time.Time {
	sched, _ := parser.Parse(s.spec)
	return sched.Next(now.In(s.loc))
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// in-flight jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.String("cron", s.spec),
		slog.Time("next", s.Next(time.Now())))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
