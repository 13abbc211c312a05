package database

import (
	"context"
	"errors"
	"time"

	"gatehouse/internal/domain"
)

// InsertRequestLog appends a single admitted-request row.
func InsertRequestLog(ctx context.Context, record *domain.RequestLog) error {
	if DB == nil {
		return errors.New("database not initialised")
	}
	if record == nil {
		return errors.New("request log record is nil")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	return db.Create(record).Error
}

// QueryRequestWindow returns all request logs with timestamp in [start, end).
func QueryRequestWindow(ctx context.Context, start, end time.Time) ([]domain.RequestLog, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var records []domain.RequestLog
	err := db.
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRequestLogsBefore removes rows older than the cutoff and reports how
// many were deleted.
func DeleteRequestLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	result := db.Where("timestamp < ?", cutoff).Delete(&domain.RequestLog{})
	return result.RowsAffected, result.Error
}
