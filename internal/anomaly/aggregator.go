// Package anomaly turns a trailing window of request history into suspicion
// flags. It is a batch process: the run period and the window length are
// independent configuration, and a run is a pure function of the stored
// records plus the rule thresholds.
package anomaly

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"gatehouse/internal/domain"
)

// Store is the persistence capability the detector needs.
type Store interface {
	QueryRequestWindow(ctx context.Context, start, end time.Time) ([]domain.RequestLog, error)
	CreateSuspiciousIP(ctx context.Context, ip, reason string) (bool, error)
}

// Thresholds are the fixed rule constants for one detector.
type Thresholds struct {
	Volume        int
	Rate          float64
	PathDiversity int
	Countries     int
	Cities        int
	BurstSpan     time.Duration
	BurstCount    int

	SensitivePathPrefixes []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Volume:                100,
		Rate:                  2,
		PathDiversity:         50,
		Countries:             3,
		Cities:                5,
		BurstSpan:             5 * time.Minute,
		BurstCount:            20,
		SensitivePathPrefixes: []string{"/admin/", "/login/", "/api/sensitive/", "/api/admin/"},
	}
}

type Detector struct {
	store      Store
	thresholds Thresholds
}

func NewDetector(store Store, thresholds Thresholds) *Detector {
	return &Detector{store: store, thresholds: thresholds}
}

// Detect scans all request logs with timestamp in [start, end), classifies
// per-IP behaviour against the rule set, and persists newly flagged IPs.
// Flagging is first-wins: an IP with an existing active flag is skipped, so
// repeated runs over the same window converge without duplicates. Each flag
// is committed independently and the context is checked between IP groups so
// a scheduler can abort a run without corrupting partial writes.
func (d *Detector) Detect(ctx context.Context, start, end time.Time) (int, error) {
	records, err := d.store.QueryRequestWindow(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("anomaly: query window: %w", err)
	}

	grouped := aggregate(records, d.thresholds.SensitivePathPrefixes)

	ips := make([]string, 0, len(grouped))
	for ip := range grouped {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	flagged := 0
	for _, ip := range ips {
		if err := ctx.Err(); err != nil {
			return flagged, err
		}

		reason := d.classify(grouped[ip])
		if reason == "" {
			continue
		}

		created, err := d.store.CreateSuspiciousIP(ctx, ip, reason)
		if err != nil {
			return flagged, fmt.Errorf("anomaly: flag %s: %w", ip, err)
		}
		if created {
			flagged++
			log.Warn("Flagged suspicious IP", "ip", ip, "reason", reason)
		}
	}

	return flagged, nil
}

type ipStats struct {
	count          int
	paths          map[string]struct{}
	sensitivePaths map[string]struct{}
	countries      map[string]struct{}
	cities         map[string]struct{}
	first          time.Time
	last           time.Time
}

func newIPStats() *ipStats {
	return &ipStats{
		paths:          make(map[string]struct{}),
		sensitivePaths: make(map[string]struct{}),
		countries:      make(map[string]struct{}),
		cities:         make(map[string]struct{}),
	}
}

func (s *ipStats) span() time.Duration {
	return s.last.Sub(s.first)
}

// rate is requests per minute over the observed span. A zero span collapses
// to the raw count, so a pile of requests with no measurable spread still
// reads as a high rate.
func (s *ipStats) rate() float64 {
	span := s.span()
	if span <= 0 {
		return float64(s.count)
	}
	return float64(s.count) / span.Minutes()
}

func aggregate(records []domain.RequestLog, sensitivePrefixes []string) map[string]*ipStats {
	grouped := make(map[string]*ipStats)

	for _, record := range records {
		stats, found := grouped[record.IP]
		if !found {
			stats = newIPStats()
			grouped[record.IP] = stats
		}

		stats.count++
		stats.paths[record.Path] = struct{}{}

		if matchesPrefix(record.Path, sensitivePrefixes) {
			stats.sensitivePaths[record.Path] = struct{}{}
		}

		if record.Country != "" {
			stats.countries[record.Country] = struct{}{}
		}
		if record.City != "" {
			stats.cities[record.City] = struct{}{}
		}

		if stats.first.IsZero() || record.Timestamp.Before(stats.first) {
			stats.first = record.Timestamp
		}
		if stats.last.IsZero() || record.Timestamp.After(stats.last) {
			stats.last = record.Timestamp
		}
	}

	return grouped
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// classify applies every rule independently and joins the triggered clauses
// into one reason string. An empty string means the IP is not flagged.
func (d *Detector) classify(stats *ipStats) string {
	th := d.thresholds
	var reasons []string

	if stats.count > th.Volume {
		reasons = append(reasons, fmt.Sprintf("High request volume: %d requests", stats.count))
	}

	if rate := stats.rate(); rate > th.Rate {
		reasons = append(reasons, fmt.Sprintf("High request rate: %.2f requests/minute", rate))
	}

	if len(stats.sensitivePaths) > 0 {
		reasons = append(reasons, fmt.Sprintf("Accessing sensitive paths: %s", joinSorted(stats.sensitivePaths)))
	}

	if len(stats.paths) > th.PathDiversity {
		reasons = append(reasons, fmt.Sprintf("Unusual path diversity: %d unique paths", len(stats.paths)))
	}

	if len(stats.countries) > th.Countries {
		reasons = append(reasons, fmt.Sprintf("Multiple countries: %s", joinSorted(stats.countries)))
	}
	if len(stats.cities) > th.Cities {
		reasons = append(reasons, fmt.Sprintf("Multiple cities: %s", joinSorted(stats.cities)))
	}

	if stats.span() < th.BurstSpan && stats.count > th.BurstCount {
		reasons = append(reasons, fmt.Sprintf("Burst pattern: %d requests in %.0f seconds", stats.count, stats.span().Seconds()))
	}

	return strings.Join(reasons, "; ")
}

func joinSorted(set map[string]struct{}) string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
