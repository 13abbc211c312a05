package domain

import "time"

// BlockedIP stores administratively blocked addresses. At most one row per IP.
type BlockedIP struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	IP     string `gorm:"size:45;uniqueIndex;not null"`
	Reason string `gorm:"size:512;not null;default:''"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
