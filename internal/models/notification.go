package models

import "time"

type AlertType string

const (
	AlertLoginSuccess    AlertType = "LOGIN_SUCCESS"
	AlertConcurrentLogin AlertType = "CONCURRENT_LOGIN"
	AlertForumPost       AlertType = "FORUM_POST"
)

type SecurityNotification struct {
	ID uint `gorm:"primaryKey"`

	UserID *uint `gorm:"index"`
	User   *User `gorm:"constraint:OnDelete:SET NULL"`

	Title     string    `gorm:"size:200;not null"`
	Message   string    `gorm:"type:text;not null"`
	AlertType AlertType `gorm:"type:varchar(50);not null"`
	IsRead    bool      `gorm:"not null;index"`
	IPAddress string    `gorm:"size:45"`

	CreatedAt time.Time `gorm:"index"`
}
