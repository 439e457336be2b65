package gameweek

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the phase sweep on a cron schedule.
type Scheduler struct {
	Cron    *cron.Cron
	service *Service
	log     logrus.FieldLogger
	ctx     context.Context
	timeout time.Duration
}

func NewScheduler(ctx context.Context, svc *Service, log logrus.FieldLogger) *Scheduler {
	entry := log.WithField("component", "scheduler")
	cronLog := cron.PrintfLogger(entry)
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		service: svc,
		log:     entry,
		ctx:     ctx,
		timeout: 5 * time.Minute,
	}
}

// Register adds the sweep under a cron expression, e.g. "@every 1m".
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.Sweep); err != nil {
		return fmt.Errorf("register gameweek sweep: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) Sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	report, err := s.service.CheckAndAdvanceGameweekStates(ctx)
	if err != nil {
		s.log.WithError(err).Error("gameweek sweep failed")
		return
	}
	if !report.Changed() {
		s.log.Debug("gameweek sweep: nothing due")
	}
}
