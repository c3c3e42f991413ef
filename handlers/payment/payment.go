package payment

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/trawers/trawers-api/config"
	paymentsvc "github.com/trawers/trawers-api/services/payment"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/response"
)

// PaymentHandler exposes checkout initiation and the gateway webhook
type PaymentHandler struct {
	service *paymentsvc.Service
	cfg     *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *paymentsvc.Service, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		cfg:     cfg,
	}
}

// CheckoutRequest represents a checkout session request
type CheckoutRequest struct {
	CourseID uint `json:"courseId" validate:"required,min=1"`
}

// CreateCheckoutSession handles POST /api/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "courseId is required")
	}

	result, err := h.service.CreateCheckoutSession(c.Context(), userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, paymentsvc.ErrAlreadyPurchased):
			return response.BadRequest(c, "Course already purchased")
		default:
			return response.InternalServerError(c, "Failed to create checkout session")
		}
	}

	return response.Success(c, result)
}

// Webhook handles POST /api/webhook. The signature is verified against
// the raw body before anything else happens; an unverifiable delivery
// has no effects. Non-2xx responses make the gateway retry, so only
// persistence failures return 500.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signature, h.cfg.STRIPE_WEBHOOK_SECRET)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		return response.BadRequest(c, "Invalid webhook signature")
	}

	if err := h.service.HandleEvent(c.Context(), event); err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrMalformedEvent), errors.Is(err, paymentsvc.ErrOrderIntegrity):
			log.Printf("Webhook event %s rejected: %v", event.ID, err)
			return response.BadRequest(c, "Event cannot be processed")
		default:
			log.Printf("Webhook event %s failed: %v", event.ID, err)
			return response.InternalServerError(c, "Failed to process event")
		}
	}

	return response.Success(c, fiber.Map{"received": true})
}
