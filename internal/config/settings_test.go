package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	s := Load()

	if s.BlockCacheTTL != time.Hour {
		t.Fatalf("block cache TTL = %s, want 1h", s.BlockCacheTTL)
	}
	if s.GeoCacheTTL != 24*time.Hour {
		t.Fatalf("geo cache TTL = %s, want 24h", s.GeoCacheTTL)
	}
	if s.Detection.Interval != time.Hour || s.Detection.Window != time.Hour {
		t.Fatalf("detection timing = %s/%s, want 1h/1h", s.Detection.Interval, s.Detection.Window)
	}
	if s.Detection.VolumeThreshold != 100 {
		t.Fatalf("volume threshold = %d, want 100", s.Detection.VolumeThreshold)
	}
	if s.Retention.Days != 30 {
		t.Fatalf("retention days = %d, want 30", s.Retention.Days)
	}
	if len(s.Detection.SensitivePathPrefixes) != 4 {
		t.Fatalf("sensitive prefixes = %v, want 4 defaults", s.Detection.SensitivePathPrefixes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BLOCK_CACHE_TTL_SECONDS", "120")
	t.Setenv("GEO_CACHE_TTL_SECONDS", "600")
	t.Setenv("DETECTION_INTERVAL_MINUTES", "15")
	t.Setenv("DETECTION_WINDOW_MINUTES", "30")
	t.Setenv("ANOMALY_VOLUME_THRESHOLD", "42")
	t.Setenv("ANOMALY_RATE_THRESHOLD", "3.5")
	t.Setenv("SENSITIVE_PATH_PREFIXES", "/secret/, /internal/")
	t.Setenv("LOG_RETENTION_DAYS", "7")

	s := Load()

	if s.BlockCacheTTL != 2*time.Minute {
		t.Fatalf("block cache TTL = %s, want 2m", s.BlockCacheTTL)
	}
	if s.GeoCacheTTL != 10*time.Minute {
		t.Fatalf("geo cache TTL = %s, want 10m", s.GeoCacheTTL)
	}
	if s.Detection.Interval != 15*time.Minute {
		t.Fatalf("detection interval = %s, want 15m", s.Detection.Interval)
	}
	if s.Detection.Window != 30*time.Minute {
		t.Fatalf("detection window = %s, want 30m", s.Detection.Window)
	}
	if s.Detection.VolumeThreshold != 42 {
		t.Fatalf("volume threshold = %d, want 42", s.Detection.VolumeThreshold)
	}
	if s.Detection.RateThreshold != 3.5 {
		t.Fatalf("rate threshold = %v, want 3.5", s.Detection.RateThreshold)
	}
	want := []string{"/secret/", "/internal/"}
	if len(s.Detection.SensitivePathPrefixes) != len(want) {
		t.Fatalf("sensitive prefixes = %v, want %v", s.Detection.SensitivePathPrefixes, want)
	}
	for i, prefix := range want {
		if s.Detection.SensitivePathPrefixes[i] != prefix {
			t.Fatalf("sensitive prefixes = %v, want %v", s.Detection.SensitivePathPrefixes, want)
		}
	}
	if s.Retention.Days != 7 {
		t.Fatalf("retention days = %d, want 7", s.Retention.Days)
	}
}

func TestLoadRejectsInvalidTiming(t *testing.T) {
	t.Setenv("DETECTION_WINDOW_MINUTES", "0")
	t.Setenv("DETECTION_INTERVAL_MINUTES", "0")

	s := Load()

	if s.Detection.Window != time.Hour || s.Detection.Interval != time.Hour {
		t.Fatalf("zero timing not corrected: %s/%s", s.Detection.Interval, s.Detection.Window)
	}
}

func TestGetReturnsStoredSnapshot(t *testing.T) {
	original := Get()
	t.Cleanup(func() { Set(original) })

	custom := defaults()
	custom.Retention.Days = 99
	Set(custom)

	if got := Get(); got.Retention.Days != 99 {
		t.Fatalf("snapshot days = %d, want 99", got.Retention.Days)
	}
}
