// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartReconcileSweep periodically recomputes the financials of every open
// or in-progress tournament. The aggregator is a full recomputation, so the
// sweep is safe to run at any time; it exists to self-heal aggregates after
// a missed or failed webhook-side recompute.
func (s *EarningsService) StartReconcileSweep() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			ids, err := s.Store.ListActiveTournamentIDs(ctx)
			if err != nil {
				log.Printf("[Sweep] DB error listing active tournaments: %v", err)
				return
			}

			for _, id := range ids {
				if err := s.RecomputeTournamentStats(ctx, id); err != nil {
					log.Printf("[Sweep] Failed to recompute stats for tournament %s: %v", id, err)
				}
			}
		}),
	)
}
