package config

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"gatehouse/internal/support"
)

type Settings struct {
	BackendPort int

	// BlockCacheTTL bounds how long a cached block-status verdict is trusted
	// before the block list is consulted again.
	BlockCacheTTL time.Duration
	GeoCacheTTL   time.Duration

	Geo       GeoSettings
	Detection DetectionSettings
	Retention RetentionSettings
}

type GeoSettings struct {
	// Provider selects the resolver implementation: "geolite", "http" or "off".
	Provider   string
	CityDBPath string
	APIURL     string
	Timeout    time.Duration
}

type DetectionSettings struct {
	// Interval is how often the aggregator runs; Window is how far back each
	// run looks. They are independent knobs.
	Interval time.Duration
	Window   time.Duration

	VolumeThreshold        int
	RateThreshold          float64
	PathDiversityThreshold int
	CountryThreshold       int
	CityThreshold          int
	BurstSpan              time.Duration
	BurstCount             int
	SensitivePathPrefixes  []string
}

type RetentionSettings struct {
	Days     int
	Interval time.Duration
}

var defaultSensitivePrefixes = []string{"/admin/", "/login/", "/api/sensitive/", "/api/admin/"}

var settingsValue atomic.Value

func init() {
	settingsValue.Store(defaults())
}

func defaults() Settings {
	return Settings{
		BackendPort:   8082,
		BlockCacheTTL: time.Hour,
		GeoCacheTTL:   24 * time.Hour,
		Geo: GeoSettings{
			Provider: "geolite",
			Timeout:  5 * time.Second,
		},
		Detection: DetectionSettings{
			Interval:               time.Hour,
			Window:                 time.Hour,
			VolumeThreshold:        100,
			RateThreshold:          2,
			PathDiversityThreshold: 50,
			CountryThreshold:       3,
			CityThreshold:          5,
			BurstSpan:              5 * time.Minute,
			BurstCount:             20,
			SensitivePathPrefixes:  defaultSensitivePrefixes,
		},
		Retention: RetentionSettings{
			Days:     30,
			Interval: 6 * time.Hour,
		},
	}
}

// Load reads the settings from the environment and stores them as the current
// snapshot. Invalid or missing values fall back to defaults.
func Load() Settings {
	s := defaults()

	s.BackendPort = support.GetEnvInt("BACKEND_PORT", s.BackendPort)

	s.BlockCacheTTL = envSeconds("BLOCK_CACHE_TTL_SECONDS", s.BlockCacheTTL)
	s.GeoCacheTTL = envSeconds("GEO_CACHE_TTL_SECONDS", s.GeoCacheTTL)

	s.Geo.Provider = support.GetEnv("GEO_PROVIDER", s.Geo.Provider)
	s.Geo.CityDBPath = support.GetEnv("GEOLITE_CITY_DB", "data/GeoLite2-City.mmdb")
	s.Geo.APIURL = support.GetEnv("GEO_API_URL", "")
	s.Geo.Timeout = envSeconds("GEO_API_TIMEOUT_SECONDS", s.Geo.Timeout)

	s.Detection.Interval = envMinutes("DETECTION_INTERVAL_MINUTES", s.Detection.Interval)
	s.Detection.Window = envMinutes("DETECTION_WINDOW_MINUTES", s.Detection.Window)
	s.Detection.VolumeThreshold = support.GetEnvInt("ANOMALY_VOLUME_THRESHOLD", s.Detection.VolumeThreshold)
	s.Detection.RateThreshold = support.GetEnvFloat("ANOMALY_RATE_THRESHOLD", s.Detection.RateThreshold)
	s.Detection.PathDiversityThreshold = support.GetEnvInt("ANOMALY_PATH_DIVERSITY_THRESHOLD", s.Detection.PathDiversityThreshold)
	s.Detection.CountryThreshold = support.GetEnvInt("ANOMALY_COUNTRY_THRESHOLD", s.Detection.CountryThreshold)
	s.Detection.CityThreshold = support.GetEnvInt("ANOMALY_CITY_THRESHOLD", s.Detection.CityThreshold)
	s.Detection.BurstSpan = envSeconds("ANOMALY_BURST_SPAN_SECONDS", s.Detection.BurstSpan)
	s.Detection.BurstCount = support.GetEnvInt("ANOMALY_BURST_COUNT", s.Detection.BurstCount)
	s.Detection.SensitivePathPrefixes = support.GetEnvList("SENSITIVE_PATH_PREFIXES", s.Detection.SensitivePathPrefixes)

	s.Retention.Days = support.GetEnvInt("LOG_RETENTION_DAYS", s.Retention.Days)
	s.Retention.Interval = envMinutes("RETENTION_INTERVAL_MINUTES", s.Retention.Interval)

	if s.Detection.Window <= 0 {
		log.Warn("Invalid detection window, falling back to 1h")
		s.Detection.Window = time.Hour
	}
	if s.Detection.Interval <= 0 {
		log.Warn("Invalid detection interval, falling back to 1h")
		s.Detection.Interval = time.Hour
	}

	settingsValue.Store(s)
	return s
}

// Get returns the current settings snapshot atomically.
func Get() Settings {
	return settingsValue.Load().(Settings)
}

// Set replaces the current snapshot. Used by tests.
func Set(s Settings) {
	settingsValue.Store(s)
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	seconds := support.GetEnvInt(key, -1)
	if seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func envMinutes(key string, fallback time.Duration) time.Duration {
	minutes := support.GetEnvInt(key, -1)
	if minutes < 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}
