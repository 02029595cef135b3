package stats

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher wraps robfig/cron and keeps the dashboard counters warm.
type Refresher struct {
	cron     *cron.Cron
	svc      *Service
	schedule string
}

// NewRefresher creates a Refresher that recomputes the counters every
// interval.
func NewRefresher(svc *Service, every time.Duration) *Refresher {
	return &Refresher{
		cron:     cron.New(),
		svc:      svc,
		schedule: fmt.Sprintf("@every %s", every),
	}
}

// Start registers the refresh job and starts the scheduler. Also runs one
// refresh immediately so the dashboard is warm without waiting for the
// first tick.
func (r *Refresher) Start(ctx context.Context) error {
	refresh := func() {
		tctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := r.svc.Refresh(tctx); err != nil {
			log.Printf("[stats] refresh failed: %v", err)
		}
	}

	if _, err := r.cron.AddFunc(r.schedule, refresh); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.cron.Start()
	log.Printf("[stats] refresh cron started, schedule %s", r.schedule)

	go refresh()
	return nil
}

// Stop gracefully shuts down the scheduler.
func (r *Refresher) Stop() {
	r.cron.Stop()
	log.Println("[stats] refresh cron stopped")
}
