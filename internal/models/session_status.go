package models

import "time"

const (
	SessionLoggedIn  = "LOGGED_IN"
	SessionLoggedOut = "LOGGED_OUT"
)

// UserSessionStatus is the per-account logged-in flag used for concurrent
// login detection. Writers must hold the row lock (see database.SessionRepository).
type UserSessionStatus struct {
	ID uint `gorm:"primaryKey"`

	UserID *uint `gorm:"uniqueIndex"`
	User   *User `gorm:"constraint:OnDelete:SET NULL"`

	IsLoggedIn     bool   `gorm:"not null"`
	LastIP         string `gorm:"size:45"`
	LastActivityAt time.Time
}

func (s UserSessionStatus) State() string {
	if s.IsLoggedIn {
		return SessionLoggedIn
	}
	return SessionLoggedOut
}
