package database

import (
	"context"
	"errors"
	"time"

	"gatehouse/internal/domain"

	"gorm.io/gorm"
)

// CreateSuspiciousIP flags an IP with the given reason. First flag wins: if an
// active entry already exists the call is a no-op and returns false. An
// inactive entry (previously released by an admin) is re-activated with the
// new reason and counts as a fresh flag.
func CreateSuspiciousIP(ctx context.Context, ip, reason string) (bool, error) {
	if DB == nil {
		return false, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var existing domain.SuspiciousIP
	err := db.Where("ip = ?", ip).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsActive {
			return false, nil
		}
		updates := map[string]any{
			"reason":      reason,
			"detected_at": time.Now().UTC(),
			"is_active":   true,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return false, err
		}
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := domain.SuspiciousIP{
			IP:         ip,
			Reason:     reason,
			DetectedAt: time.Now().UTC(),
			IsActive:   true,
		}
		if err := db.Create(&entry).Error; err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// ListActiveSuspiciousIPs returns active flags, newest first.
func ListActiveSuspiciousIPs(ctx context.Context) ([]domain.SuspiciousIP, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var entries []domain.SuspiciousIP
	err := db.Where("is_active = ?", true).Order("detected_at DESC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeactivateSuspiciousIP releases an active flag. Returns false when no active
// entry existed for the IP.
func DeactivateSuspiciousIP(ctx context.Context, ip string) (bool, error) {
	if DB == nil {
		return false, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	result := db.Model(&domain.SuspiciousIP{}).
		Where("ip = ? AND is_active = ?", ip, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountActiveSuspiciousIPs returns the number of active flags.
func CountActiveSuspiciousIPs(ctx context.Context) (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var count int64
	err := db.Model(&domain.SuspiciousIP{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
