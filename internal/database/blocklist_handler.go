package database

import (
	"context"
	"errors"

	"gatehouse/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsIPBlocked reports whether an active block entry exists for the IP.
func IsIPBlocked(ctx context.Context, ip string) (bool, error) {
	if DB == nil {
		return false, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var count int64
	if err := db.Model(&domain.BlockedIP{}).Where("ip = ?", ip).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBlockedIP inserts a block entry for the IP. The second return value is
// false when an entry already existed; in that case the existing entry is
// returned untouched.
func CreateBlockedIP(ctx context.Context, ip, reason string) (*domain.BlockedIP, bool, error) {
	if DB == nil {
		return nil, false, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var existing domain.BlockedIP
	err := db.Where("ip = ?", ip).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	entry := domain.BlockedIP{IP: ip, Reason: reason}
	// OnConflict guards the window between the existence check and the insert
	// when two admins block the same IP concurrently.
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip"}},
		DoNothing: true,
	}).Create(&entry)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		if err := db.Where("ip = ?", ip).First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}

	return &entry, true, nil
}

// DeleteBlockedIP removes the block entry for the IP. Returns false when no
// entry existed.
func DeleteBlockedIP(ctx context.Context, ip string) (bool, error) {
	if DB == nil {
		return false, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	result := db.Where("ip = ?", ip).Delete(&domain.BlockedIP{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListBlockedIPs returns all block entries, newest first.
func ListBlockedIPs(ctx context.Context) ([]domain.BlockedIP, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var entries []domain.BlockedIP
	if err := db.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
