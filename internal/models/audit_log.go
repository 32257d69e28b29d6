package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
	ActionView   AuditAction = "VIEW"
)

// AuditLog is append-only: rows are inserted once and never updated.
type AuditLog struct {
	ID uint `gorm:"primaryKey"`

	UserID *uint `gorm:"index"`
	User   *User `gorm:"constraint:OnDelete:SET NULL"`

	Action   AuditAction `gorm:"size:100;not null;index"`
	Entity   string      `gorm:"size:100;not null;index"` // "InformationAsset", "Risk", "Control"
	EntityID string      `gorm:"size:50"`

	Path      string `gorm:"size:300"`
	Method    string `gorm:"size:10"`
	IP        string `gorm:"size:80"`
	UserAgent string `gorm:"size:300"`

	Success bool              `gorm:"not null"`
	Meta    datatypes.JSONMap `gorm:"type:jsonb"`

	Timestamp time.Time `gorm:"autoCreateTime;index"`
}
