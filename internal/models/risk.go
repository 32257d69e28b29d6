package models

import (
	"time"

	"gorm.io/gorm"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type RiskStatus string

const (
	RiskOpen     RiskStatus = "open"
	RiskTreating RiskStatus = "treating"
	RiskClosed   RiskStatus = "closed"
)

func (s RiskStatus) Valid() bool {
	switch s {
	case RiskOpen, RiskTreating, RiskClosed:
		return true
	}
	return false
}

// ScoreRisk maps likelihood x impact onto the fixed level thresholds.
// Inputs are not range checked.
func ScoreRisk(likelihood, impact int) (int, RiskLevel) {
	score := likelihood * impact
	switch {
	case score <= 4:
		return score, RiskLow
	case score <= 9:
		return score, RiskMedium
	case score <= 16:
		return score, RiskHigh
	default:
		return score, RiskCritical
	}
}

type Risk struct {
	ID uint `gorm:"primaryKey"`

	AssetID uint              `gorm:"index;not null"`
	Asset   *InformationAsset `gorm:"constraint:OnDelete:CASCADE"`

	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`

	Likelihood int       `gorm:"not null"`
	Impact     int       `gorm:"not null"`
	Score      int       `gorm:"not null;index"`
	Level      RiskLevel `gorm:"type:varchar(20);not null;index"`

	Status RiskStatus `gorm:"type:varchar(20);not null;index"`

	CreatedAt time.Time
}

// Recalculate overwrites Score and Level from Likelihood and Impact.
func (r *Risk) Recalculate() {
	r.Score, r.Level = ScoreRisk(r.Likelihood, r.Impact)
}

// BeforeSave runs for both Create and Save, so stored score/level always
// match the stored likelihood/impact.
func (r *Risk) BeforeSave(_ *gorm.DB) error {
	r.Recalculate()
	return nil
}
