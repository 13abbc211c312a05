package domain

import "time"

// SuspiciousIP is an address flagged by anomaly detection. The reason is a
// snapshot taken at first detection; later runs do not refresh it while the
// entry stays active.
type SuspiciousIP struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	IP     string `gorm:"size:45;uniqueIndex;not null"`
	Reason string `gorm:"type:text;not null"`

	DetectedAt time.Time `gorm:"not null"`
	IsActive   bool      `gorm:"not null;default:true;index"`
}
