package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/stripe/stripe-go/v81"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trawers/trawers-api/config"
	"github.com/trawers/trawers-api/model"
	paymentsvc "github.com/trawers/trawers-api/services/payment"
)

const testWebhookSecret = "whsec_test_secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Course{}, &model.Order{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		APP_URL:               "http://localhost:3000",
		STRIPE_SECRET_KEY:     "sk_test_dummy",
		STRIPE_WEBHOOK_SECRET: testWebhookSecret,
	}
	handler := NewPaymentHandler(paymentsvc.NewService(db, cfg), cfg)

	app := fiber.New()
	app.Post("/api/webhook", handler.Webhook)

	return app, db
}

func seedUserAndCourse(t *testing.T, db *gorm.DB) (model.User, model.Course) {
	t.Helper()

	user := model.User{Email: "alice@example.com", PasswordHash: "x", Name: "Alice", Role: model.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	course := model.Course{Title: "Trekking Basics", Price: 299.99}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return user, course
}

// signPayload builds a Stripe-Signature header value for the payload
// the same way the gateway does: HMAC-SHA256 over "<timestamp>.<body>".
func signPayload(payload, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedPayload(sessionID string, userID, courseID uint) string {
	return fmt.Sprintf(`{
		"id": "evt_%s",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"metadata": {"userId": "%d", "courseId": "%d"}
			}
		}
	}`, sessionID, stripe.APIVersion, sessionID, userID, courseID)
}

func webhookRequest(payload, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	return req
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.Order{}).Count(&n).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}

func TestWebhookValidSignatureCreatesOrder(t *testing.T) {
	app, db := newTestApp(t)
	user, course := seedUserAndCourse(t, db)

	payload := completedPayload("cs_test_ok", user.ID, course.ID)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	resp, err := app.Test(webhookRequest(payload, sig))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var order model.Order
	if err := db.First(&order, "payment_id = ?", "cs_test_ok").Error; err != nil {
		t.Fatalf("order not found: %v", err)
	}
	if order.Status != model.OrderStatusCompleted {
		t.Errorf("status = %q, want %q", order.Status, model.OrderStatusCompleted)
	}
	if order.Amount != 299.99 {
		t.Errorf("amount = %v, want 299.99", order.Amount)
	}
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	app, db := newTestApp(t)
	user, course := seedUserAndCourse(t, db)

	payload := completedPayload("cs_test_bad", user.ID, course.ID)

	cases := []struct {
		name string
		sig  string
	}{
		{"missing header", ""},
		{"garbage header", "t=123,v1=deadbeef"},
		{"wrong secret", signPayload(payload, "whsec_other", time.Now())},
		{"stale timestamp", signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(webhookRequest(payload, tc.sig))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	if n := countOrders(t, db); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
}

func TestWebhookRedeliverySameSession(t *testing.T) {
	app, db := newTestApp(t)
	user, course := seedUserAndCourse(t, db)

	payload := completedPayload("cs_test_redeliver", user.ID, course.ID)

	for i := 0; i < 2; i++ {
		sig := signPayload(payload, testWebhookSecret, time.Now())
		resp, err := app.Test(webhookRequest(payload, sig))
		if err != nil {
			t.Fatalf("delivery %d failed: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("delivery %d status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	if n := countOrders(t, db); n != 1 {
		t.Errorf("orders = %d, want 1", n)
	}
}

func TestWebhookUnknownEventTypeAcknowledged(t *testing.T) {
	app, db := newTestApp(t)

	payload := fmt.Sprintf(`{"id":"evt_other","api_version":%q,"type":"invoice.paid","data":{"object":{}}}`, stripe.APIVersion)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	resp, err := app.Test(webhookRequest(payload, sig))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if n := countOrders(t, db); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
}
