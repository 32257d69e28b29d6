package models

import "time"

// PasswordResetCode stores the SHA-256 digest of a 6-digit reset code.
type PasswordResetCode struct {
	ID uint `gorm:"primaryKey"`

	UserID uint  `gorm:"index;not null"`
	User   *User `gorm:"constraint:OnDelete:CASCADE"`

	CodeHash  string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"index"`
	ExpiresAt time.Time `gorm:"index;not null"`
}
