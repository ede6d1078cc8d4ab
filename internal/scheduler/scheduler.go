package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/boreal-gis/site-atlas/internal/atlas"
)

// buildTimeout bounds one rebuild, including source fetches and geocoding.
const buildTimeout = 2 * time.Minute

// Scheduler periodically rebuilds the map from the configured site sources.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *atlas.Service
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, service *atlas.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic rebuild and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running map rebuild job")

		ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
		defer cancel()

		if _, err := s.service.BuildAndStore(ctx); err != nil {
			log.Printf("scheduler: rebuild failed: %v", err)
			return
		}
		log.Println("scheduler: completed map rebuild job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
