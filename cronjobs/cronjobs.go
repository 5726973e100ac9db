package cronjobs

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule matches the dashboard's 30 second auto refresh.
const DefaultSchedule = "@every 30s"

// refreshTimeout bounds one run so a hung backend call cannot pile up runs.
const refreshTimeout = 20 * time.Second

type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// InitCronJobs schedules the view refresh and starts the scheduler. The
// caller stops it with Stop on shutdown.
func InitCronJobs(schedule string, r Refresher) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	log.WithField("schedule", schedule).Info("starting cron jobs")
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() { refresh(r) })
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

func refresh(r Refresher) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := r.RefreshAll(ctx); err != nil {
		log.WithError(err).Warn("cronjob: view refresh failed")
		return
	}
	log.WithField("took", time.Since(start).String()).Debug("cronjob: views refreshed")
}
