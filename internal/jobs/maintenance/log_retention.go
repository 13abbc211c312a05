// Package maintenance hosts housekeeping loops that keep stored request
// history bounded.
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/support"
)

const retentionLockKey = "gatehouse:leader:log_retention"

// StartLogRetentionRoutine prunes request logs older than the configured
// horizon on a fixed interval. Leader-locked so only one instance prunes.
func StartLogRetentionRoutine(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	err := support.RunWithLeader(ctx, retentionLockKey, support.DefaultLeadershipTTL, func(leaderCtx context.Context) {
		runLogRetentionLoop(leaderCtx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Log retention routine stopped", "error", err)
	}
}

func runLogRetentionLoop(ctx context.Context) {
	interval := config.Get().Retention.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runLogRetention(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runLogRetention(ctx)
		}
	}
}

func runLogRetention(ctx context.Context) {
	days := config.Get().Retention.Days
	if days <= 0 {
		days = 30
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	deleted, err := database.DeleteRequestLogsBefore(ctx, cutoff)
	if err != nil {
		log.Error("Failed to prune old request logs", "error", err)
		return
	}

	if deleted > 0 {
		log.Info("Pruned old request logs", "deleted", deleted, "cutoff", cutoff)
	}
}
