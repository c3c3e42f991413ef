package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/utils/auth"
	"github.com/trawers/trawers-api/utils/response"
)

// SessionCookieName is the cookie carrying the session credential
const SessionCookieName = "token"

// Paths the gate redirects to on failure. "Not authenticated" goes to
// login; "authenticated but not authorized" goes home.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// SessionGate is the per-request authorization checkpoint. Every request
// through it re-verifies the credential; decisions are never cached.
type SessionGate struct {
	jwtManager *auth.JWTManager
	secure     bool // mark cookies Secure (production)
}

// NewSessionGate creates a session gate backed by the given JWT manager
func NewSessionGate(jwtManager *auth.JWTManager, secure bool) *SessionGate {
	return &SessionGate{
		jwtManager: jwtManager,
		secure:     secure,
	}
}

// extractToken pulls the credential from the session cookie, falling
// back to an Authorization bearer header for non-browser clients.
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// authenticate verifies the request credential and returns its claims
func (g *SessionGate) authenticate(c *fiber.Ctx) (*auth.Claims, error) {
	token := extractToken(c)
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	return g.jwtManager.ValidateToken(token)
}

// attach stores the decoded identity for downstream handlers
func attach(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_role", claims.Role)
	c.Locals("claims", claims)
}

// Pages guards browser page prefixes (dashboard, admin, profile,
// orders). Missing or invalid credentials redirect to the login page;
// a valid non-admin credential on an admin path redirects home.
func (g *SessionGate) Pages() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := g.authenticate(c)
		if err != nil {
			return c.Redirect(LoginPath, fiber.StatusFound)
		}

		if strings.HasPrefix(c.Path(), "/admin") && claims.Role != model.RoleAdmin {
			return c.Redirect(HomePath, fiber.StatusFound)
		}

		attach(c, claims)
		return c.Next()
	}
}

// Required guards API routes: 401 JSON instead of a redirect
func (g *SessionGate) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := g.authenticate(c)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Missing or invalid token")
		}

		attach(c, claims)
		return c.Next()
	}
}

// RequireRole is the single role check shared by all protected handlers.
// It runs after Required and rejects authenticated callers whose role
// does not match.
func (g *SessionGate) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := GetUserRole(c)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}

		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin is shorthand for Required + RequireRole(ADMIN) on one route
func (g *SessionGate) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := g.authenticate(c)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Missing or invalid token")
		}

		if claims.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		attach(c, claims)
		return c.Next()
	}
}

// SetSessionCookie writes the session credential cookie. HTTP-only,
// site-wide, SameSite Lax, Secure in production.
func (g *SessionGate) SetSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.jwtManager.Expiry().Seconds()),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie. The token itself stays
// valid until natural expiry; there is no server-side revocation.
func (g *SessionGate) ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email := c.Locals("user_email")
	if email == nil {
		return "", false
	}
	e, ok := email.(string)
	return e, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (string, bool) {
	role := c.Locals("user_role")
	if role == nil {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}
