package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs the terminal's periodic jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler in the named location, falling back to local time.
func New(location string) *Scheduler {
	loc, err := time.LoadLocation(location)
	if err != nil || location == "" {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
	}
}

// Add registers job under spec ("@every 30s", "0 */5 * * * *", ...).
// A panicking job is logged and does not stop the scheduler.
func (s *Scheduler) Add(name, spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, wrap(name, job))
	if err != nil {
		zap.S().Errorf("init job %s error %s", name, err.Error())
	}
	return err
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		zap.S().Warn("scheduler stop timed out with jobs still running")
	}
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func wrap(name string, job func()) func() {
	return func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Errorw("job panicked", "job", name, "error", err)
			}
		}()
		job()
	}
}
