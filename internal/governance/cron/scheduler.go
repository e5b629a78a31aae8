package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/velion-digital/dkn-backend/internal/governance/store"
)

// Scheduler runs the nightly review-due sweep: Trusted artefacts past their
// review date are flagged Outdated so the review queue surfaces them.
type Scheduler struct {
	store *store.Postgres
	cron  *cron.Cron
}

func NewScheduler(st *store.Postgres) *Scheduler {
	return &Scheduler{store: st}
}

// Start registers the nightly job (12:00 AM).
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runSweep()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (overdue review sweep nightly at 12:00AM)")
	c.Start()
	s.cron = c
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	flagged, err := s.store.FlagOverdue(ctx, time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		log.Printf("Overdue review sweep failed: %v", err)
		return
	}
	log.Printf("Overdue review sweep flagged %d artefact(s)", flagged)
}
