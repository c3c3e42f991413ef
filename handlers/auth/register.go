package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trawers/trawers-api/database"
	"github.com/trawers/trawers-api/model"
	authutil "github.com/trawers/trawers-api/utils/auth"
	"github.com/trawers/trawers-api/utils/response"
	"github.com/trawers/trawers-api/utils/validation"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email                 string `json:"email" validate:"required,email"`
	Password              string `json:"password" validate:"required,min=8"`
	Name                  string `json:"name" validate:"required,min=2"`
	DataProcessingConsent bool   `json:"dataProcessingConsent"`
	MarketingConsent      bool   `json:"marketingConsent"`
}

// Register handles user registration. Registration without data
// processing consent is rejected before anything is persisted.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = validation.SanitizeString(req.Email)
	req.Name = validation.SanitizeString(req.Name)

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := authutil.ValidatePassword(req.Password); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if !req.DataProcessingConsent {
		return response.BadRequest(c, "Data processing consent is required")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	now := time.Now()
	user := model.User{
		Email:                 req.Email,
		PasswordHash:          hashedPassword,
		Name:                  req.Name,
		Role:                  model.RoleUser,
		DataProcessingConsent: true,
		MarketingConsent:      req.MarketingConsent,
		ConsentDate:           &now,
	}

	// The unique index on email settles duplicates, including two
	// concurrent registrations for the same address. Duplicate email
	// is a client error, same status the frontend already handles for
	// the other registration failures.
	if err := h.db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return response.BadRequest(c, "User with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.Created(c, toUserResponse(&user))
}
