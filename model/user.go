package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'USER'" json:"role"` // USER, ADMIN

	// Optional profile fields
	Phone      string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `gorm:"type:varchar(100)" json:"city,omitempty"`
	PostalCode string `gorm:"type:varchar(10)" json:"postal_code,omitempty"`
	Bio        string `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL  string `gorm:"type:text" json:"avatar_url,omitempty"`

	// Consent tracking. DataProcessingConsent is mandatory at registration;
	// ConsentDate is set when it is granted.
	DataProcessingConsent bool       `gorm:"not null;default:false" json:"data_processing_consent"`
	MarketingConsent      bool       `gorm:"not null;default:false" json:"marketing_consent"`
	ConsentDate           *time.Time `json:"consent_date,omitempty"`

	// Relationships. Deleting a user removes their orders and documents.
	Orders    []Order    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Documents []Document `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user has the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
