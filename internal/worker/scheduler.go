package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-clinic-scheduler/config"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/usecase"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultCronSpec = "0 0 1 * *"

// Scheduler fires the generation job on a cron schedule for the rolling window.
type Scheduler struct {
	cron      *cron.Cron
	job       *SlotGenerationJob
	log       *logrus.Logger
	location  *time.Location
	months    int
	batchSize int
	now       func() time.Time
}

func NewScheduler(cfg config.SchedulerConfig, location *time.Location, job *SlotGenerationJob, log *logrus.Logger) (*Scheduler, error) {
	spec := cfg.Cron
	if spec == "" {
		spec = DefaultCronSpec
	}
	months := cfg.WindowMonths
	if months <= 0 {
		months = entity.DefaultWindowMonths
	}

	logger := cron.PrintfLogger(log)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		job:       job,
		log:       log,
		location:  location,
		months:    months,
		batchSize: cfg.BatchSize,
		now:       time.Now,
	}

	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("invalid scheduler cron %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Slot generation scheduler started, next run at %s", s.cron.Entries()[0].Next.Format(time.RFC3339))
}

// Stop halts the schedule and returns a context done once a firing run completes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Params builds the generation parameters for a run at the current time.
func (s *Scheduler) Params() usecase.GenerateParams {
	today := s.now().In(s.location)
	return usecase.GenerateParams{
		Window:    entity.WindowFor(today, s.months),
		BatchSize: s.batchSize,
		Actor:     entity.ActorSystemCron,
	}
}

func (s *Scheduler) fire() {
	params := s.Params()
	s.log.Infof("Scheduled slot generation for window %s", params.Window)

	if _, err := s.job.RunNow(context.Background(), params); err != nil {
		if errors.Is(err, ErrJobAlreadyRunning) || errors.Is(err, ErrJobStopped) {
			s.log.Infof("Scheduled slot generation skipped: %v", err)
			return
		}
		s.log.Errorf("Scheduled slot generation failed: %+v", err)
	}
}
