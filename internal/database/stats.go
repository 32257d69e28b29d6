package database

import (
	"context"
	"time"

	"ferretcontrol/internal/models"

	"gorm.io/gorm"
)

type AccessStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	InactiveUsers  int64 `json:"inactive_users"`
	SecurityAlerts int64 `json:"security_alerts"`
}

// LoadAccessStats counts accounts and open high/critical risks. Active means
// a login within the 24 hours before now.
func LoadAccessStats(ctx context.Context, db *gorm.DB, now time.Time) (AccessStats, error) {
	var s AccessStats
	q := db.WithContext(ctx)

	if err := q.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return s, err
	}
	if err := q.Model(&models.User{}).
		Where("last_login >= ?", now.Add(-24*time.Hour)).
		Count(&s.ActiveUsers).Error; err != nil {
		return s, err
	}
	if err := q.Model(&models.User{}).
		Where("last_login IS NULL").
		Count(&s.InactiveUsers).Error; err != nil {
		return s, err
	}
	if err := q.Model(&models.Risk{}).
		Where("level IN ? AND status = ?", []models.RiskLevel{models.RiskHigh, models.RiskCritical}, models.RiskOpen).
		Count(&s.SecurityAlerts).Error; err != nil {
		return s, err
	}
	return s, nil
}
