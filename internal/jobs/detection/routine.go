// Package detection schedules periodic anomaly-detection runs.
package detection

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"gatehouse/internal/anomaly"
)

const detectionLockKey = "gatehouse:leader:anomaly_detection"

type leaderFunc func(ctx context.Context, key string, ttl time.Duration, run func(context.Context)) error

// Runner drives the detector on a fixed interval, each run covering the
// trailing window. Interval and window are independent. Concurrent triggers
// (scheduled tick plus a manual request) collapse into a single run.
type Runner struct {
	detector *anomaly.Detector
	interval time.Duration
	window   time.Duration
	group    singleflight.Group
	now      func() time.Time

	// runWithLeader is swappable so tests can run without redis.
	runWithLeader leaderFunc
	leaderTTL     time.Duration
}

func NewRunner(detector *anomaly.Detector, interval, window time.Duration, leader leaderFunc, leaderTTL time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Runner{
		detector:      detector,
		interval:      interval,
		window:        window,
		now:           time.Now,
		runWithLeader: leader,
		leaderTTL:     leaderTTL,
	}
}

// Start runs the leader-locked scheduling loop until ctx is done. The leader
// lock guarantees at most one instance runs detection at a time; first-wins
// flagging makes an accidental overlap harmless anyway.
func (r *Runner) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.runWithLeader == nil {
		r.runLoop(ctx)
		return
	}

	err := r.runWithLeader(ctx, detectionLockKey, r.leaderTTL, func(leaderCtx context.Context) {
		r.runLoop(leaderCtx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Anomaly detection routine stopped", "error", err)
	}
}

func (r *Runner) runLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				// A failed run must not pass as "nothing suspicious found".
				log.Error("Scheduled anomaly detection failed", "error", err)
			}
		}
	}
}

// RunOnce executes a single detection pass over the trailing window and
// returns the number of newly flagged IPs. Concurrent callers share one run.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	result, err, _ := r.group.Do("detect", func() (interface{}, error) {
		end := r.now().UTC()
		start := end.Add(-r.window)

		began := time.Now()
		flagged, err := r.detector.Detect(ctx, start, end)
		if err != nil {
			return flagged, err
		}

		log.Info("Anomaly detection completed",
			"window_start", start,
			"window_end", end,
			"newly_flagged", flagged,
			"duration", time.Since(began),
		)
		return flagged, nil
	})

	flagged, _ := result.(int)
	return flagged, err
}

// Trigger runs detection on demand. With async set the run is fire-and-forget
// on a background context and the returned count is zero.
func (r *Runner) Trigger(ctx context.Context, async bool) (int, error) {
	if !async {
		return r.RunOnce(ctx)
	}

	go func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			log.Error("Async anomaly detection failed", "error", err)
		}
	}()
	return 0, nil
}
