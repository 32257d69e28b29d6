package models

import "time"

type AssetType string

const (
	AssetDataset  AssetType = "dataset"
	AssetDatabase AssetType = "database"
	AssetAPI      AssetType = "api"
	AssetFile     AssetType = "file"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetDataset, AssetDatabase, AssetAPI, AssetFile:
		return true
	}
	return false
}

type Classification string

const (
	ClassPublic       Classification = "public"
	ClassInternal     Classification = "internal"
	ClassConfidential Classification = "confidential"
	ClassRestricted   Classification = "restricted"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassPublic, ClassInternal, ClassConfidential, ClassRestricted:
		return true
	}
	return false
}

const DefaultCriticality = 2

var criticalityLabels = map[int]string{
	1: "1 - Low",
	2: "2 - Medium",
	3: "3 - High",
	4: "4 - Very High",
	5: "5 - Critical",
}

// CriticalityLabel returns the display label for a 1-5 criticality value.
func CriticalityLabel(c int) string {
	if l, ok := criticalityLabels[c]; ok {
		return l
	}
	return "Unknown"
}

// InformationAsset is a tracked piece of organizational information.
type InformationAsset struct {
	ID uint `gorm:"primaryKey"`

	Name           string         `gorm:"size:200;not null"`
	AssetType      AssetType      `gorm:"type:varchar(20);not null"`
	Source         string         `gorm:"size:200"` // "sales postgres", "supplier API"
	Classification Classification `gorm:"type:varchar(20);not null"`
	Criticality    int            `gorm:"not null"`
	Tags           string         `gorm:"size:300"` // CSV: "pii,sales,prices"
	Description    string         `gorm:"type:text"`

	OwnerID *uint `gorm:"index"`
	Owner   *User `gorm:"constraint:OnDelete:SET NULL"`

	CreatedAt time.Time
}
