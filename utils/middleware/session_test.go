package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trawers/trawers-api/utils/auth"
)

func newGateApp(t *testing.T, expiry time.Duration) (*fiber.App, *SessionGate, *auth.JWTManager) {
	t.Helper()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: "gate-test-secret",
		Expiry: expiry,
		Issuer: "trawers-api-test",
	})
	gate := NewSessionGate(jwtManager, false)

	app := fiber.New()
	for _, prefix := range []string{"/dashboard", "/admin", "/profile", "/orders"} {
		app.Use(prefix, gate.Pages())
	}
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/dashboard", ok)
	app.Get("/admin", ok)
	app.Get("/profile", ok)
	app.Get("/orders", ok)
	app.Get("/api/profile", gate.Required(), ok)
	app.Get("/api/orders", gate.RequireAdmin(), ok)

	return app, gate, jwtManager
}

func requestWithCookie(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return req
}

func TestPagesRedirectsWithoutCookie(t *testing.T) {
	app, _, _ := newGateApp(t, time.Hour)

	for _, path := range []string{"/dashboard", "/admin", "/profile", "/orders"} {
		resp, err := app.Test(requestWithCookie(path, ""))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusFound {
			t.Errorf("%s: status = %d, want %d", path, resp.StatusCode, fiber.StatusFound)
		}
		if loc := resp.Header.Get("Location"); loc != LoginPath {
			t.Errorf("%s: redirect = %q, want %q", path, loc, LoginPath)
		}
	}
}

func TestPagesRedirectsInvalidToken(t *testing.T) {
	app, _, _ := newGateApp(t, time.Hour)

	resp, err := app.Test(requestWithCookie("/dashboard", "not-a-token"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != LoginPath {
		t.Errorf("redirect = %q, want %q", loc, LoginPath)
	}
}

func TestPagesRedirectsExpiredToken(t *testing.T) {
	app, _, jwtManager := newGateApp(t, -time.Minute)

	token, err := jwtManager.GenerateToken(1, "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	resp, err := app.Test(requestWithCookie("/profile", token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if loc := resp.Header.Get("Location"); loc != LoginPath {
		t.Errorf("redirect = %q, want %q", loc, LoginPath)
	}
}

func TestPagesAdminPathNonAdminRedirectsHome(t *testing.T) {
	app, _, jwtManager := newGateApp(t, time.Hour)

	token, err := jwtManager.GenerateToken(1, "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	resp, err := app.Test(requestWithCookie("/admin", token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusFound)
	}
	// Authenticated but not authorized goes home, not to login
	if loc := resp.Header.Get("Location"); loc != HomePath {
		t.Errorf("redirect = %q, want %q", loc, HomePath)
	}
}

func TestPagesAllowsValidUser(t *testing.T) {
	app, _, jwtManager := newGateApp(t, time.Hour)

	userToken, err := jwtManager.GenerateToken(1, "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	adminToken, err := jwtManager.GenerateToken(2, "admin@trawers.pl", "ADMIN")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	cases := []struct {
		path  string
		token string
	}{
		{"/dashboard", userToken},
		{"/orders", userToken},
		{"/admin", adminToken},
	}

	for _, tc := range cases {
		resp, err := app.Test(requestWithCookie(tc.path, tc.token))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s: status = %d, want 200", tc.path, resp.StatusCode)
		}
	}
}

func TestRequiredReturns401(t *testing.T) {
	app, _, _ := newGateApp(t, time.Hour)

	resp, err := app.Test(requestWithCookie("/api/profile", ""))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequireAdminRejectsUserRole(t *testing.T) {
	app, _, jwtManager := newGateApp(t, time.Hour)

	token, err := jwtManager.GenerateToken(1, "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	resp, err := app.Test(requestWithCookie("/api/orders", token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

// A token issued before a role change keeps its old role until expiry.
// Roles are read from verified claims only; there is no revocation.
func TestStaleRoleTokenKeepsOldRole(t *testing.T) {
	app, _, jwtManager := newGateApp(t, time.Hour)

	// Token issued while the user still had the USER role. A later role
	// change in the store does not reach the already-issued credential.
	staleToken, err := jwtManager.GenerateToken(1, "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	resp, err := app.Test(requestWithCookie("/admin", staleToken))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if loc := resp.Header.Get("Location"); loc != HomePath {
		t.Errorf("stale token reached admin path, redirect = %q, want %q", loc, HomePath)
	}
}

func TestBearerHeaderFallback(t *testing.T) {
	app, _, jwtManager := newGateApp(t, time.Hour)

	token, err := jwtManager.GenerateToken(1, "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
