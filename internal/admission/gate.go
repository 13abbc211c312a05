package admission

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"gatehouse/internal/domain"
	"gatehouse/internal/geo"
)

// Store is the persistence capability the gate needs: the authoritative block
// set and the request log.
type Store interface {
	IsIPBlocked(ctx context.Context, ip string) (bool, error)
	InsertRequestLog(ctx context.Context, record *domain.RequestLog) error
}

// GeoSource identifies which branch produced the geo data for a decision, so
// callers and tests can tell a degraded lookup from a real one.
type GeoSource int

const (
	GeoSourceNone GeoSource = iota
	GeoSourcePrivate
	GeoSourceCache
	GeoSourceResolved
	GeoSourceUnknown
)

func (s GeoSource) String() string {
	switch s {
	case GeoSourcePrivate:
		return "private"
	case GeoSourceCache:
		return "cache"
	case GeoSourceResolved:
		return "resolved"
	case GeoSourceUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// Decision is the outcome of one admission check.
type Decision struct {
	IP      string
	Allowed bool

	// Record is the log entry written for an admitted request, nil on deny.
	Record    *domain.RequestLog
	GeoSource GeoSource
}

// Gate is the per-request decision point. It is safe for concurrent use; the
// shared cache tolerates duplicate population on concurrent misses because
// the cached values are idempotent functions of the IP.
type Gate struct {
	store    Store
	resolver geo.Resolver
	cache    *Cache
	now      func() time.Time
}

// NewGate builds a gate. resolver may be nil, in which case every public IP
// degrades to the unknown location.
func NewGate(store Store, resolver geo.Resolver, cache *Cache) *Gate {
	if cache == nil {
		cache = NewCache(DefaultBlockStatusTTL, DefaultGeoTTL)
	}
	return &Gate{
		store:    store,
		resolver: resolver,
		cache:    cache,
		now:      time.Now,
	}
}

// Cache exposes the gate's shared cache for out-of-band invalidation.
func (g *Gate) Cache() *Cache {
	return g.cache
}

// Admit decides whether the request may proceed and, if so, appends a request
// log entry. remoteAddr is the socket peer ("host:port" or bare host),
// forwardedFor the raw X-Forwarded-For header value.
func (g *Gate) Admit(ctx context.Context, remoteAddr, forwardedFor, path string) Decision {
	ip := ClientIP(remoteAddr, forwardedFor)

	if g.isBlocked(ctx, ip) {
		log.Warn("Blocked IP attempted access", "ip", ip, "path", path)
		return Decision{IP: ip, Allowed: false}
	}

	location, source := g.resolveGeo(ctx, ip)

	record := &domain.RequestLog{
		IP:        ip,
		Path:      path,
		Timestamp: g.now().UTC(),
		Country:   location.Country,
		City:      location.City,
	}

	// Logging is best effort: a storage hiccup must not turn into a denial.
	if err := g.store.InsertRequestLog(ctx, record); err != nil {
		log.Error("Failed to record admitted request", "ip", ip, "path", path, "error", err)
	}

	return Decision{IP: ip, Allowed: true, Record: record, GeoSource: source}
}

// ClientIP extracts the originating address. When X-Forwarded-For is present
// the first comma-separated token wins; that token is client-controlled
// unless an upstream trusted proxy rewrites the header, which is a deployment
// concern this layer does not second-guess.
func ClientIP(remoteAddr, forwardedFor string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if idx := strings.IndexByte(forwardedFor, ','); idx >= 0 {
			first = forwardedFor[:idx]
		}
		if trimmed := strings.TrimSpace(first); trimmed != "" {
			return trimmed
		}
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

func (g *Gate) isBlocked(ctx context.Context, ip string) bool {
	if blocked, found := g.cache.BlockStatus(ip); found {
		return blocked
	}

	blocked, err := g.store.IsIPBlocked(ctx, ip)
	if err != nil {
		// Fail open: an unreachable block list must not take the service
		// down with it. The verdict is not cached so the next request
		// retries the lookup.
		log.Error("Block-status lookup failed, admitting", "ip", ip, "error", err)
		return false
	}

	g.cache.SetBlockStatus(ip, blocked)
	return blocked
}

func (g *Gate) resolveGeo(ctx context.Context, ip string) (geo.Location, GeoSource) {
	if geo.IsPrivate(ip) {
		return geo.PrivateLocation, GeoSourcePrivate
	}

	if location, found := g.cache.Geo(ip); found {
		return location, GeoSourceCache
	}

	location, source := g.lookupGeo(ctx, ip)

	// Failures are cached alongside successes so a failing resolver is not
	// hammered once per request, at the cost of delaying recovery of real
	// geo data until the entry expires.
	g.cache.SetGeo(ip, location)
	return location, source
}

func (g *Gate) lookupGeo(ctx context.Context, ip string) (geo.Location, GeoSource) {
	if g.resolver == nil {
		return geo.UnknownLocation, GeoSourceUnknown
	}

	location, err := g.resolver.Resolve(ctx, ip)
	if err != nil {
		log.Warn("Geo resolution failed", "ip", ip, "error", err)
		return geo.UnknownLocation, GeoSourceUnknown
	}
	return location, GeoSourceResolved
}
