package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/response"
	"github.com/trawers/trawers-api/utils/validation"
)

// UpdateProfileRequest represents a profile update request. Email and
// role are not updatable here.
type UpdateProfileRequest struct {
	Name             string `json:"name" validate:"omitempty,min=2"`
	Phone            string `json:"phone" validate:"omitempty,max=30"`
	Address          string `json:"address" validate:"omitempty,max=255"`
	City             string `json:"city" validate:"omitempty,max=100"`
	PostalCode       string `json:"postalCode" validate:"omitempty,max=12"`
	Bio              string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL        string `json:"avatarUrl" validate:"omitempty,url"`
	MarketingConsent *bool  `json:"marketingConsent"`
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, toUserResponse(&user))
}

// UpdateProfile updates the authenticated user's profile fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if req.Name != "" {
		user.Name = validation.SanitizeString(req.Name)
	}
	user.Phone = validation.SanitizeString(req.Phone)
	user.Address = validation.SanitizeString(req.Address)
	user.City = validation.SanitizeString(req.City)
	user.PostalCode = validation.SanitizeString(req.PostalCode)
	user.Bio = validation.SanitizeString(req.Bio)
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if req.MarketingConsent != nil {
		user.MarketingConsent = *req.MarketingConsent
	}

	if err := h.db.Save(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(&user))
}
