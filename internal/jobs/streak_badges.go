package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/atenjiha/MAHSA-LEARN/internal/config"
)

type StreakGranter interface {
	GrantStreakBadges(ctx context.Context) (int, error)
}

// StartStreakBadgeJob schedules the Streak Master sweep on
// STREAK_BADGE_SCHEDULE. It returns nil when the job is disabled; the
// scheduler stops with ctx.
func StartStreakBadgeJob(ctx context.Context, cfg config.Config, granter StreakGranter) (*cron.Cron, error) {
	if !cfg.StreakBadgeEnabled {
		return nil, nil
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.StreakBadgeSchedule, func() {
		runStreakSweep(ctx, granter, timeout)
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("streak badge job scheduled: %s", cfg.StreakBadgeSchedule)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

func runStreakSweep(ctx context.Context, granter StreakGranter, timeout time.Duration) int {
	sweepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	granted, err := granter.GrantStreakBadges(sweepCtx)
	if err != nil {
		log.Printf("streak badge job error: %v", err)
	}
	if granted > 0 {
		log.Printf("streak badge job granted %d badges", granted)
	}
	return granted
}
