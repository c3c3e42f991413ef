package model

import (
	"time"

	"gorm.io/gorm"
)

// Document represents a file uploaded by a user (e.g. paperwork for
// course funding applications). Files live in object storage; only the
// URL and key are kept here.
type Document struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Name       string         `gorm:"not null" json:"name"`
	URL        string         `gorm:"type:text;not null" json:"url"`
	StorageKey string         `gorm:"not null" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
