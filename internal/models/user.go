package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is an operator account. The profile is kept in a separate table so the
// account row stays small for the auth path.
type User struct {
	ID           uint       `gorm:"primaryKey"`
	Username     string     `gorm:"uniqueIndex;size:150;not null"`
	Email        string     `gorm:"size:254;index"`
	PasswordHash string     `gorm:"not null"`
	IsStaff      bool       `gorm:"not null"`
	IsActive     bool       `gorm:"not null"`
	LastLogin    *time.Time `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile *UserProfile `gorm:"constraint:OnDelete:CASCADE"`
}

type UserProfile struct {
	ID          uint              `gorm:"primaryKey"`
	UserID      uint              `gorm:"uniqueIndex;not null"`
	DisplayName string            `gorm:"size:100"`
	Avatar      string            `gorm:"size:500"` // URL, files are stored elsewhere
	Bio         string            `gorm:"type:text"`
	SocialLinks datatypes.JSONMap `gorm:"type:jsonb"`
}
