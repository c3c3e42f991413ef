package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/response"
	"github.com/trawers/trawers-api/utils/validation"
)

// AdminHandler handles administrative user management and statistics
type AdminHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// UpdateUserRequest represents an admin user update request
type UpdateUserRequest struct {
	Name string `json:"name" validate:"omitempty,min=2"`
	Role string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// ListUsers handles GET /api/users (admin)
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.User{})
	if search != "" {
		query = query.Where("email LIKE ? OR name LIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var users []model.User
	if err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, pagination)
}

// GetUser handles GET /api/users/:id (admin)
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.Preload("Orders").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, user)
}

// UpdateUser handles PUT /api/users/:id (admin). A changed role takes
// effect for new sessions; tokens already issued keep their old role
// until they expire.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Name != "" {
		user.Name = validation.SanitizeString(req.Name)
	}
	if req.Role != "" {
		user.Role = req.Role
	}

	if err := h.db.Save(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, user)
}

// DeleteUser handles DELETE /api/users/:id (admin). Orders and
// documents go with the account.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	if selfID, ok := middleware.GetUserID(c); ok && selfID == uint(id) {
		return response.BadRequest(c, "Cannot delete your own account")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if err := h.db.Select("Orders", "Documents").Delete(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted", nil)
}

// StatsResponse aggregates the numbers shown on the admin dashboard
type StatsResponse struct {
	Users           int64   `json:"users"`
	Courses         int64   `json:"courses"`
	CompletedOrders int64   `json:"completed_orders"`
	Revenue         float64 `json:"revenue"`
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	var stats StatsResponse

	if err := h.db.Model(&model.User{}).Count(&stats.Users).Error; err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	if err := h.db.Model(&model.Course{}).Count(&stats.Courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	if err := h.db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusCompleted).
		Count(&stats.CompletedOrders).Error; err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}

	var revenue *float64
	if err := h.db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusCompleted).
		Select("SUM(amount)").
		Scan(&revenue).Error; err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}
	if revenue != nil {
		stats.Revenue = *revenue
	}

	return response.Success(c, stats)
}
