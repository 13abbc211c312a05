// Package admission decides, per request, whether an originating address is
// allowed through, and records admitted traffic for later analysis.
package admission

import (
	"sync"
	"time"

	"gatehouse/internal/geo"
)

const (
	DefaultBlockStatusTTL = time.Hour
	DefaultGeoTTL         = 24 * time.Hour
)

type blockEntry struct {
	blocked bool
	expires time.Time
}

type geoEntry struct {
	location geo.Location
	expires  time.Time
}

// Cache holds time-bounded block-status verdicts and geo results keyed by IP.
// It is shared by every concurrent gate invocation; entries expire
// independently at write time + TTL and an expired read behaves as a miss.
// State is process-local and lost on restart.
type Cache struct {
	mu       sync.Mutex
	blockTTL time.Duration
	geoTTL   time.Duration
	now      func() time.Time

	block map[string]blockEntry
	geo   map[string]geoEntry
}

func NewCache(blockTTL, geoTTL time.Duration) *Cache {
	if blockTTL <= 0 {
		blockTTL = DefaultBlockStatusTTL
	}
	if geoTTL <= 0 {
		geoTTL = DefaultGeoTTL
	}
	return &Cache{
		blockTTL: blockTTL,
		geoTTL:   geoTTL,
		now:      time.Now,
		block:    make(map[string]blockEntry),
		geo:      make(map[string]geoEntry),
	}
}

// BlockStatus returns the cached verdict for the IP and whether a fresh entry
// was present. Both blocked and not-blocked verdicts are cached.
func (c *Cache) BlockStatus(ip string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.block[ip]
	if !found {
		return false, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.block, ip)
		return false, false
	}
	return entry.blocked, true
}

func (c *Cache) SetBlockStatus(ip string, blocked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block[ip] = blockEntry{blocked: blocked, expires: c.now().Add(c.blockTTL)}
}

// InvalidateBlockStatus drops the verdict for the IP so the next request
// re-checks the block list instead of serving a stale entry.
func (c *Cache) InvalidateBlockStatus(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.block, ip)
}

func (c *Cache) Geo(ip string) (geo.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.geo[ip]
	if !found {
		return geo.Location{}, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.geo, ip)
		return geo.Location{}, false
	}
	return entry.location, true
}

func (c *Cache) SetGeo(ip string, location geo.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geo[ip] = geoEntry{location: location, expires: c.now().Add(c.geoTTL)}
}

// Sweep removes expired entries. Reads already treat expired entries as
// misses; this only reclaims memory for IPs that never come back.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for ip, entry := range c.block {
		if !now.Before(entry.expires) {
			delete(c.block, ip)
		}
	}
	for ip, entry := range c.geo {
		if !now.Before(entry.expires) {
			delete(c.geo, ip)
		}
	}
}
