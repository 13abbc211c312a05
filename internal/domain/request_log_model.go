package domain

import "time"

// RequestLog is one admitted request, enriched with whatever geo data was
// available at admission time. Rows are append-only and pruned by retention.
type RequestLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// IP holds the client address string (IPv4 or IPv6).
	IP string `gorm:"size:45;index;not null"`

	Path      string    `gorm:"size:255;not null"`
	Timestamp time.Time `gorm:"index;not null"`

	Country string `gorm:"size:100"`
	City    string `gorm:"size:100"`
}
