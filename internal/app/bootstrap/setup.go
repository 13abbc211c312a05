// Package bootstrap wires the admission and detection components together on
// top of the configured storage and resolver.
package bootstrap

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"gatehouse/internal/admission"
	"gatehouse/internal/anomaly"
	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/domain"
	"gatehouse/internal/geo"
	"gatehouse/internal/jobs/detection"
	"gatehouse/internal/support"
)

// App holds the wired components for one process.
type App struct {
	Cache     *admission.Cache
	Gate      *admission.Gate
	Blocklist *admission.Blocklist
	Detector  *anomaly.Detector
	Runner    *detection.Runner
}

// Setup opens the database and builds the component graph from the current
// settings.
func Setup() (*App, error) {
	if _, err := database.SetupDB(); err != nil {
		return nil, err
	}
	return New(config.Get(), support.RunWithLeader), nil
}

// New builds the component graph against the already-initialised database.
// leader may be nil, in which case the periodic runner executes without a
// leadership lock (used by tests and one-shot CLI runs).
func New(settings config.Settings, leader func(context.Context, string, time.Duration, func(context.Context)) error) *App {
	cache := admission.NewCache(settings.BlockCacheTTL, settings.GeoCacheTTL)
	store := gormStore{}

	gate := admission.NewGate(store, buildResolver(settings.Geo), cache)
	blocklist := admission.NewBlocklist(store, cache)

	detector := anomaly.NewDetector(store, thresholdsFromSettings(settings.Detection))
	runner := detection.NewRunner(detector, settings.Detection.Interval, settings.Detection.Window, leader, support.DefaultLeadershipTTL)

	return &App{
		Cache:     cache,
		Gate:      gate,
		Blocklist: blocklist,
		Detector:  detector,
		Runner:    runner,
	}
}

func buildResolver(settings config.GeoSettings) geo.Resolver {
	switch settings.Provider {
	case "geolite":
		resolver, err := geo.NewGeoLiteResolver(settings.CityDBPath)
		if err != nil {
			log.Warn("GeoLite database unavailable, geo lookups degrade to Unknown", "error", err)
			return nil
		}
		return resolver
	case "http":
		if settings.APIURL == "" {
			log.Warn("GEO_API_URL not set, geo lookups degrade to Unknown")
			return nil
		}
		return geo.NewHTTPResolver(settings.APIURL, settings.Timeout)
	default:
		return nil
	}
}

func thresholdsFromSettings(settings config.DetectionSettings) anomaly.Thresholds {
	return anomaly.Thresholds{
		Volume:                settings.VolumeThreshold,
		Rate:                  settings.RateThreshold,
		PathDiversity:         settings.PathDiversityThreshold,
		Countries:             settings.CountryThreshold,
		Cities:                settings.CityThreshold,
		BurstSpan:             settings.BurstSpan,
		BurstCount:            settings.BurstCount,
		SensitivePathPrefixes: settings.SensitivePathPrefixes,
	}
}

// gormStore adapts the database package to the capability interfaces the
// admission gate, block-list administration and the detector depend on.
type gormStore struct{}

func (gormStore) IsIPBlocked(ctx context.Context, ip string) (bool, error) {
	return database.IsIPBlocked(ctx, ip)
}

func (gormStore) InsertRequestLog(ctx context.Context, record *domain.RequestLog) error {
	return database.InsertRequestLog(ctx, record)
}

func (gormStore) CreateBlockedIP(ctx context.Context, ip, reason string) (*domain.BlockedIP, bool, error) {
	return database.CreateBlockedIP(ctx, ip, reason)
}

func (gormStore) DeleteBlockedIP(ctx context.Context, ip string) (bool, error) {
	return database.DeleteBlockedIP(ctx, ip)
}

func (gormStore) QueryRequestWindow(ctx context.Context, start, end time.Time) ([]domain.RequestLog, error) {
	return database.QueryRequestWindow(ctx, start, end)
}

func (gormStore) CreateSuspiciousIP(ctx context.Context, ip, reason string) (bool, error) {
	return database.CreateSuspiciousIP(ctx, ip, reason)
}
