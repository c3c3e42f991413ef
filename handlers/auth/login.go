package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trawers/trawers-api/model"
	authutil "github.com/trawers/trawers-api/utils/auth"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries what the frontend needs after login. The
// session token travels in the cookie, not the body.
type LoginResponse struct {
	User UserResponse `json:"user"`
	Role string       `json:"role"`
}

// Login verifies credentials and sets the session cookie. The same
// generic 401 covers unknown email and wrong password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate session token")
	}

	h.sessionGate.SetSessionCookie(c, token)

	return response.Success(c, LoginResponse{
		User: toUserResponse(&user),
		Role: user.Role,
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side session state to tear down.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessionGate.ClearSessionCookie(c)
	return response.SuccessWithMessage(c, "Logged out", nil)
}

// Me returns the authenticated user's account
func (h *AuthHandler) Me(c *fiber.Ctx) error {
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
