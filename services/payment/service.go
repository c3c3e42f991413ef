package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/config"
	"github.com/trawers/trawers-api/database"
	"github.com/trawers/trawers-api/model"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrAlreadyPurchased = errors.New("course already purchased")
	ErrPaymentProvider  = errors.New("payment provider request failed")
	ErrMalformedEvent   = errors.New("malformed event payload")
	ErrOrderIntegrity   = errors.New("event references data that no longer exists")
)

// EventCheckoutCompleted is the only gateway event that creates orders.
const EventCheckoutCompleted = "checkout.session.completed"

// Service initiates checkout sessions and reconciles gateway events
// into orders. Orders are created here and nowhere else.
type Service struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewService creates the payment service and configures the gateway SDK
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	stripe.Key = cfg.STRIPE_SECRET_KEY
	return &Service{db: db, cfg: cfg}
}

// CheckoutResult carries what the frontend needs to redirect to the gateway
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckoutSession creates a gateway checkout session for a course.
// It has no persisted side effects; the order is created only when the
// gateway confirms payment through the webhook.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, courseID uint) (*CheckoutResult, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.OrderStatusCompleted).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing orders: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyPurchased
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("pln"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(course.Title),
					},
					UnitAmount: stripe.Int64(int64(math.Round(course.Price * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.APP_URL + "/dashboard?payment=success"),
		CancelURL:  stripe.String(fmt.Sprintf("%s/courses/%d?payment=cancelled", s.cfg.APP_URL, course.ID)),
	}
	params.AddMetadata("userId", strconv.FormatUint(uint64(userID), 10))
	params.AddMetadata("courseId", strconv.FormatUint(uint64(course.ID), 10))

	sess, err := session.New(params)
	if err != nil {
		log.Printf("Checkout session creation failed for user %d course %d: %v", userID, courseID, err)
		return nil, ErrPaymentProvider
	}

	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// HandleEvent reconciles a verified gateway event. Only
// checkout.session.completed creates an order; every other event type is
// acknowledged without effects. Safe to call multiple times with the same
// event: the order's unique payment id makes redelivery a no-op.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) error {
	if string(event.Type) != EventCheckoutCompleted {
		return nil
	}

	var checkoutSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	userID, courseID, err := parseMetadata(checkoutSession.Metadata)
	if err != nil {
		return err
	}
	if checkoutSession.ID == "" {
		return fmt.Errorf("%w: missing session id", ErrMalformedEvent)
	}

	// Trust only the metadata; amounts on the event belong to the gateway.
	// The order amount is the course price at fulfillment time.
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: course %d", ErrOrderIntegrity, courseID)
		}
		return fmt.Errorf("failed to load course: %w", err)
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.Order{}).
		Where("payment_id = ?", checkoutSession.ID).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to check payment id: %w", err)
	}
	if existing > 0 {
		log.Printf("Event redelivery for payment %s, order already recorded", checkoutSession.ID)
		return nil
	}

	rawEvent, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	order := model.Order{
		UserID:    userID,
		CourseID:  course.ID,
		Status:    model.OrderStatusCompleted,
		Amount:    course.Price,
		PaymentID: checkoutSession.ID,
		EventData: datatypes.JSON(rawEvent),
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		// Concurrent redelivery can slip past the pre-check; the unique
		// index on payment_id is the real guarantee.
		if database.IsUniqueViolation(err) {
			log.Printf("Concurrent redelivery for payment %s, order already recorded", checkoutSession.ID)
			return nil
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	log.Printf("Order %d recorded for user %d course %d payment %s", order.ID, userID, course.ID, checkoutSession.ID)
	return nil
}

func parseMetadata(metadata map[string]string) (userID, courseID uint, err error) {
	rawUser, ok := metadata["userId"]
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing userId metadata", ErrMalformedEvent)
	}
	rawCourse, ok := metadata["courseId"]
	if !ok {
		return 0, 0, fmt.Errorf("%w: missing courseId metadata", ErrMalformedEvent)
	}

	user, err := strconv.ParseUint(rawUser, 10, 64)
	if err != nil || user == 0 {
		return 0, 0, fmt.Errorf("%w: invalid userId %q", ErrMalformedEvent, rawUser)
	}
	course, err := strconv.ParseUint(rawCourse, 10, 64)
	if err != nil || course == 0 {
		return 0, 0, fmt.Errorf("%w: invalid courseId %q", ErrMalformedEvent, rawCourse)
	}

	return uint(user), uint(course), nil
}
