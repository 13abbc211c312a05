package database

import (
	"context"
	"errors"
	"time"

	"gatehouse/internal/api/dto"
	"gatehouse/internal/domain"
)

const reportTopLimit = 10

// GetTrafficReport builds the analytics summary for requests since the given
// time.
func GetTrafficReport(ctx context.Context, since time.Time) (*dto.TrafficReport, error) {
	if DB == nil {
		return nil, errors.New("database not initialised")
	}

	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	report := &dto.TrafficReport{
		Period:      "Last 24 hours",
		GeneratedAt: time.Now().UTC(),
	}

	if err := db.Model(&domain.RequestLog{}).
		Where("timestamp >= ?", since).
		Count(&report.TotalRequests).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&domain.RequestLog{}).
		Where("timestamp >= ?", since).
		Distinct("ip").
		Count(&report.UniqueIPs).Error; err != nil {
		return nil, err
	}

	topCountries, err := topValues(ctx, "country", since)
	if err != nil {
		return nil, err
	}
	report.TopCountries = topCountries

	topPaths, err := topValues(ctx, "path", since)
	if err != nil {
		return nil, err
	}
	report.TopPaths = topPaths

	active, err := CountActiveSuspiciousIPs(ctx)
	if err != nil {
		return nil, err
	}
	report.ActiveSuspicious = active

	return report, nil
}

func topValues(ctx context.Context, column string, since time.Time) ([]dto.ValueCount, error) {
	db := DB
	if ctx != nil {
		db = db.WithContext(ctx)
	}

	var rows []dto.ValueCount
	err := db.Model(&domain.RequestLog{}).
		Select(column+" AS value, COUNT(*) AS count").
		Where("timestamp >= ?", since).
		Group(column).
		Order("count DESC").
		Limit(reportTopLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
