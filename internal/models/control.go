package models

// Control is a catalog entry such as an ISO 27001 Annex A control.
type Control struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:50;uniqueIndex;not null"` // e.g. "A.5.1"
	Name        string `gorm:"size:200;not null"`
	Domain      string `gorm:"size:200"` // Organizational, People, Technological
	Description string `gorm:"type:text"`
}

// RiskControl links a control to a risk it mitigates.
type RiskControl struct {
	ID uint `gorm:"primaryKey"`

	RiskID    uint `gorm:"not null;uniqueIndex:idx_risk_control"`
	ControlID uint `gorm:"not null;uniqueIndex:idx_risk_control"`

	Risk    *Risk    `gorm:"constraint:OnDelete:CASCADE"`
	Control *Control `gorm:"constraint:OnDelete:CASCADE"`

	Applied  bool   `gorm:"not null"`
	Evidence string `gorm:"type:text"`
	Notes    string `gorm:"type:text"`
}
