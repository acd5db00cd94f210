package jobs

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"
)

// ActionSweeper is the part of the action service run on a schedule.
type ActionSweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
	SendReminders(ctx context.Context) (int, error)
}

// Scheduler runs the periodic action jobs. Runs never overlap: a slow run
// makes the next tick skip.
type Scheduler struct {
	cron    *cron.Cron
	sweeper ActionSweeper
	ctx     context.Context
}

func NewScheduler(sweeper ActionSweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		ctx:     context.Background(),
	}
}

// Register adds both jobs with their cron specs ("@every 15m", "0 * * * *", ...).
func (s *Scheduler) Register(overdueSpec, reminderSpec string) error {
	if _, err := s.cron.AddFunc(overdueSpec, s.runOverdue); err != nil {
		return fmt.Errorf("invalid overdue schedule %q: %w", overdueSpec, err)
	}

	if _, err := s.cron.AddFunc(reminderSpec, s.runReminders); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
	}
	return nil
}

func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	log.Info("Action scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Action scheduler stopped")
}

func (s *Scheduler) runOverdue() {
	n, err := s.sweeper.SweepOverdue(s.ctx)
	if err != nil {
		log.Errorf("Scheduler: overdue sweep failed: %v", err)
		return
	}

	if n > 0 {
		log.Infof("Scheduler: %d actions marked as delayed", n)
	}
}

func (s *Scheduler) runReminders() {
	n, err := s.sweeper.SendReminders(s.ctx)
	if err != nil {
		log.Errorf("Scheduler: reminders failed: %v", err)
		return
	}

	if n > 0 {
		log.Infof("Scheduler: %d deadline reminders sent", n)
	}
}
