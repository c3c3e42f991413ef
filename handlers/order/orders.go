package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/response"
)

// OrderHandler handles order listing. Orders are created by the payment
// reconciler only; these endpoints are read-only.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListOrders handles GET /api/orders (admin)
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	status := c.Query("status", "")

	query := h.db.Model(&model.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count orders")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var orders []model.Order
	if err := query.Preload("User").
		Preload("Course").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch orders")
	}

	return response.Paginated(c, orders, pagination)
}

// ListMyOrders handles GET /api/orders/me
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var orders []model.Order
	if err := h.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch orders")
	}

	return response.Success(c, orders)
}
