package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trawers/trawers-api/model"
	authutil "github.com/trawers/trawers-api/utils/auth"
	"github.com/trawers/trawers-api/utils/middleware"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "auth-test-secret",
		Expiry: time.Hour,
		Issuer: "trawers-api-test",
	})
	gate := middleware.NewSessionGate(jwtManager, false)
	handler := NewAuthHandler(db, jwtManager, gate, nil)

	app := fiber.New()
	app.Post("/api/auth/register", handler.Register)
	app.Post("/api/auth/login", handler.Login)
	app.Post("/api/auth/logout", handler.Logout)
	app.Get("/api/auth/me", gate.Required(), handler.Me)

	return app, db
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}

func TestRegisterWithoutConsentRejected(t *testing.T) {
	app, db := newTestApp(t)

	body := `{"email":"alice@example.com","password":"password123","name":"Alice","dataProcessingConsent":false}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if n := countUsers(t, db); n != 0 {
		t.Errorf("users = %d, want 0", n)
	}
}

func TestRegisterSetsConsentDate(t *testing.T) {
	app, db := newTestApp(t)

	body := `{"email":"alice@example.com","password":"password123","name":"Alice","dataProcessingConsent":true}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var user model.User
	if err := db.First(&user, "email = ?", "alice@example.com").Error; err != nil {
		t.Fatalf("user not found: %v", err)
	}
	if !user.DataProcessingConsent {
		t.Error("consent flag not persisted")
	}
	if user.ConsentDate == nil {
		t.Error("consent date not set")
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, model.RoleUser)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in clear")
	}
}

func TestRegisterFieldValidationReturns400(t *testing.T) {
	app, db := newTestApp(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"email":"","password":"password123","name":"Alice","dataProcessingConsent":true}`},
		{"invalid email", `{"email":"not-an-email","password":"password123","name":"Alice","dataProcessingConsent":true}`},
		{"missing name", `{"email":"alice@example.com","password":"password123","name":"","dataProcessingConsent":true}`},
		{"short password", `{"email":"alice@example.com","password":"short","name":"Alice","dataProcessingConsent":true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", tc.body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	if n := countUsers(t, db); n != 0 {
		t.Errorf("users = %d, want 0", n)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, db := newTestApp(t)

	body := `{"email":"alice@example.com","password":"password123","name":"Alice","dataProcessingConsent":true}`
	if _, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", body)); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", body))
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if n := countUsers(t, db); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginSetsHTTPOnlyCookie(t *testing.T) {
	app, _ := newTestApp(t)

	register := `{"email":"alice@example.com","password":"password123","name":"Alice","dataProcessingConsent":true}`
	if _, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", register)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"password123"}`))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cookie := sessionCookie(resp)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HTTP-only")
	}
	if cookie.Value == "" {
		t.Error("session cookie is empty")
	}
}

func TestLoginGenericUnauthorized(t *testing.T) {
	app, _ := newTestApp(t)

	register := `{"email":"alice@example.com","password":"password123","name":"Alice","dataProcessingConsent":true}`
	if _, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/register", register)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Unknown email and wrong password must be indistinguishable
	for _, body := range []string{
		`{"email":"nobody@example.com","password":"password123"}`,
		`{"email":"alice@example.com","password":"wrong-password"}`,
	} {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/login", body))
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/auth/logout", ""))
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	cookie := sessionCookie(resp)
	if cookie == nil {
		t.Fatal("clearing cookie not set")
	}
	if cookie.Value != "" || cookie.MaxAge > 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestMeRequiresSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
