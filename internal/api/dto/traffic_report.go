package dto

import "time"

// TrafficReport summarises the trailing reporting period.
type TrafficReport struct {
	Period           string       `json:"period"`
	TotalRequests    int64        `json:"total_requests"`
	UniqueIPs        int64        `json:"unique_ips"`
	TopCountries     []ValueCount `json:"top_countries"`
	TopPaths         []ValueCount `json:"top_paths"`
	ActiveSuspicious int64        `json:"suspicious_ips"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
