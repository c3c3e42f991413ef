package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Order represents a course purchase. Orders are created exclusively by
// the payment webhook after the gateway confirms a completed checkout;
// the client never creates one directly.
type Order struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Status    string         `gorm:"type:varchar(20);default:'PENDING'" json:"status"` // PENDING, COMPLETED, CANCELLED
	Amount    float64        `gorm:"not null" json:"amount"`                           // course price at fulfillment time

	// PaymentID is the gateway checkout session id. The unique index is
	// what makes webhook processing idempotent under gateway retries.
	PaymentID string `gorm:"type:varchar(255);uniqueIndex;not null" json:"payment_id"`

	// Raw gateway event, kept for reconciliation audits (the gateway-side
	// amount can diverge from Amount if the price was edited mid-checkout).
	EventData datatypes.JSON `json:"-"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
