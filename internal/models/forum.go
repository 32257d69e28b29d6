package models

import "time"

type ForumPost struct {
	ID uint `gorm:"primaryKey"`

	AuthorID uint  `gorm:"index;not null"`
	Author   *User `gorm:"constraint:OnDelete:CASCADE"`

	Content string `gorm:"type:text;not null"`

	// top-level posts have no parent
	ParentID *uint       `gorm:"index"`
	Replies  []ForumPost `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
}
