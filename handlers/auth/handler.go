package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/trawers/trawers-api/model"
	authutil "github.com/trawers/trawers-api/utils/auth"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/validation"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	sessionGate          *middleware.SessionGate
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, sessionGate *middleware.SessionGate, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		sessionGate:          sessionGate,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	PostalCode  string     `json:"postal_code,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	ConsentDate *time.Time `json:"consent_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Phone:       user.Phone,
		Address:     user.Address,
		City:        user.City,
		PostalCode:  user.PostalCode,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		ConsentDate: user.ConsentDate,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
