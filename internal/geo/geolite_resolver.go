package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoLiteResolver answers lookups from a local GeoLite2-City database file.
type GeoLiteResolver struct {
	reader *geoip2.Reader
}

func NewGeoLiteResolver(path string) (*GeoLiteResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geo: open GeoLite2 database %q: %w", path, err)
	}
	return &GeoLiteResolver{reader: reader}, nil
}

func (r *GeoLiteResolver) Resolve(ctx context.Context, ip string) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, fmt.Errorf("geo: invalid IP %q", ip)
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return Location{}, fmt.Errorf("geo: city lookup for %s: %w", ip, err)
	}

	loc := Location{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
	}
	if loc.Country == "" {
		loc.Country = UnknownLocation.Country
	}
	if loc.City == "" {
		loc.City = UnknownLocation.City
	}
	return loc, nil
}

func (r *GeoLiteResolver) Close() error {
	return r.reader.Close()
}
