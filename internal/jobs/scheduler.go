// Package jobs runs periodic invoice maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"supercrm/internal/logger"
)

// OverdueMarker flags open invoices whose due date has passed.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// Scheduler owns the gocron scheduler and the jobs registered on it.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
}

// NewScheduler creates a scheduler with no jobs registered.
func NewScheduler(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, jobs: make(map[string]gocron.Job)}, nil
}

// RegisterOverdue runs marker every interval. Runs never overlap; a run that
// is still going when the next is due pushes the next one back.
func (s *Scheduler) RegisterOverdue(marker OverdueMarker, interval time.Duration) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(runOverdue, marker),
		gocron.WithName("invoice-overdue"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("registering overdue job: %w", err)
	}
	s.jobs["overdue"] = job
	return nil
}

// Jobs returns the names of registered jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) Start() {
	log := logger.WithComponent("jobs")
	log.Info().Int("jobs", len(s.jobs)).Msg("starting background scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	log := logger.WithComponent("jobs")
	log.Info().Msg("stopping background scheduler")
	return s.scheduler.Shutdown()
}

func runOverdue(marker OverdueMarker) {
	log := logger.WithComponent("jobs")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := marker.MarkOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("marking overdue invoices failed")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("invoices marked overdue")
	}
}
