package models

// SystemSetting is a named on/off switch editable by staff.
type SystemSetting struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"size:100;uniqueIndex;not null"`
	Value       bool   `gorm:"not null"`
	Description string `gorm:"size:255"`
}
