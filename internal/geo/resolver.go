// Package geo resolves public IP addresses to coarse location data.
package geo

import (
	"context"
	"net/netip"
)

// Location is the country/city pair recorded for an admitted request.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

var (
	// PrivateLocation labels addresses that never leave the local network.
	PrivateLocation = Location{Country: "Private", City: "Private"}
	// UnknownLocation labels addresses the resolver could not place.
	UnknownLocation = Location{Country: "Unknown", City: "Unknown"}
)

// Resolver looks up the location of a single public IP. Implementations must
// honour the context deadline; any failure is reported as an error and the
// caller degrades to UnknownLocation.
type Resolver interface {
	Resolve(ctx context.Context, ip string) (Location, error)
}

// IsPrivate reports whether the address should never be sent to a resolver:
// private ranges, loopback, link-local, and anything that does not parse.
// Unparseable input is deliberately treated as private so that a malformed
// forwarded-for value cannot trigger external lookups.
func IsPrivate(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}
