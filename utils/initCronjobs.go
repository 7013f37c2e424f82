package utils

import (
	"context"
	"time"

	"playmateserver/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const staleRecruitingCutoff = 24 * time.Hour

// Snapshotter is any store that can be flushed on a schedule.
type Snapshotter interface {
	Flush(ctx context.Context) error
}

// CronCleaner runs the periodic jobs: a safety flush of every store and
// a daily sweep that cancels matchings still recruiting past their date.
func CronCleaner(matches *store.MatchStore, snapshots []Snapshotter, logger *zap.Logger) *cron.Cron {
	c := cron.New()

	// Safety net for snapshots lost to a crash between change and flush.
	c.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, s := range snapshots {
			if err := s.Flush(ctx); err != nil {
				logger.Error("periodic snapshot flush failed", zap.Error(err))
			}
		}
	})

	// Cancel matchings that never left recruiting, once a night.
	c.AddFunc("0 3 * * *", func() {
		logger.Info("stale matching sweep started")
		n := matches.CancelStaleRecruiting(staleRecruitingCutoff)
		logger.Info("stale matching sweep finished", zap.Int("cancelled", n))
	})

	c.Start()
	return c
}
