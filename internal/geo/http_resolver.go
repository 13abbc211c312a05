package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxGeoResponseBytes = 64 << 10

// HTTPResolver queries a remote geolocation API. The expected response is a
// JSON object with a "status" field ("success" on a hit) plus "country" and
// "city" fields, the shape served by ip-api.com compatible endpoints.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type geoAPIResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, ip string) (Location, error) {
	endpoint := r.baseURL + "/" + url.PathEscape(ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("geo: build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Location{}, fmt.Errorf("geo: unexpected status %d for %s", resp.StatusCode, ip)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeoResponseBytes))
	if err != nil {
		return Location{}, fmt.Errorf("geo: read response: %w", err)
	}

	var payload geoAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Location{}, fmt.Errorf("geo: decode response: %w", err)
	}

	if payload.Status != "success" {
		return Location{}, fmt.Errorf("geo: lookup for %s returned status %q", ip, payload.Status)
	}

	loc := Location{Country: payload.Country, City: payload.City}
	if loc.Country == "" {
		loc.Country = UnknownLocation.Country
	}
	if loc.City == "" {
		loc.City = UnknownLocation.City
	}
	return loc, nil
}
