package matchmaking

import (
	"context"
	"errors"
	"log"
	"time"
)

// Scheduler periodically runs smart pairing rounds. The interval comes
// from configuration; a zero interval disables scheduling and rounds are
// only triggered through the admin surface.
type Scheduler struct {
	service  Service
	interval time.Duration
}

func NewScheduler(service Service, interval time.Duration) *Scheduler {
	return &Scheduler{service: service, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		log.Println("Round scheduler disabled")
		return
	}

	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Round scheduler started, interval %s", s.interval)

	for {
		select {
		case <-ticker.C:
			created, err := s.service.RunRound(ctx, ModeSmart)
			if errors.Is(err, ErrRoundInProgress) {
				log.Println("Scheduled round skipped, another round is running")
				continue
			}
			if err != nil {
				log.Printf("Scheduled round failed: %v", err)
				continue
			}
			log.Printf("Scheduled round created %d matches", created)
		case <-ctx.Done():
			return
		}
	}
}
