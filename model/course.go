package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a purchasable online course
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Price       float64        `gorm:"not null" json:"price"` // PLN, must be positive
	ImageURL    string         `gorm:"type:text" json:"image_url,omitempty"`
	VideoURL    string         `gorm:"type:text" json:"video_url,omitempty"`

	// Orders reference the course but the amount is snapshotted, so price
	// edits never rewrite history.
	Orders []Order `gorm:"foreignKey:CourseID" json:"-"`
}
