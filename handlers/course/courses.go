package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/services/storage"
	"github.com/trawers/trawers-api/utils/response"
	"github.com/trawers/trawers-api/utils/validation"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db           *gorm.DB
	spacesClient *storage.SpacesClient
	validator    *validation.Validator
}

// NewCourseHandler creates a new course handler. The storage client may
// be nil, in which case media uploads are rejected but CRUD still works.
func NewCourseHandler(db *gorm.DB, spacesClient *storage.SpacesClient) *CourseHandler {
	return &CourseHandler{
		db:           db,
		spacesClient: spacesClient,
		validator:    validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
	VideoURL    string  `json:"videoUrl" validate:"omitempty,url"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Title       string   `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
	VideoURL    *string  `json:"videoUrl" validate:"omitempty,url"`
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Course{})
	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/courses (admin)
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{
		Title:       validation.SanitizeString(req.Title),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		VideoURL:    req.VideoURL,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/courses/:id (admin)
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Title != "" {
		course.Title = validation.SanitizeString(req.Title)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.ImageURL != nil {
		course.ImageURL = *req.ImageURL
	}
	if req.VideoURL != nil {
		course.VideoURL = *req.VideoURL
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// DeleteCourse handles DELETE /api/courses/:id (admin). Orders keep
// their snapshot data so purchase history survives catalog changes.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted", nil)
}

// UploadCourseMedia handles POST /api/courses/:id/media (admin).
// Accepts a multipart "file" field, stores it in Spaces and attaches
// its URL to the course as image or video depending on content type.
func (h *CourseHandler) UploadCourseMedia(c *fiber.Ctx) error {
	if h.spacesClient == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "File storage is not configured", "STORAGE_UNAVAILABLE")
	}

	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Missing file")
	}

	contentType := storage.GetContentType(fileHeader.Filename)
	isImage := contentType == "image/png" || contentType == "image/jpeg" || contentType == "image/webp"
	isVideo := contentType == "video/mp4" || contentType == "video/webm"
	if !isImage && !isVideo {
		return response.BadRequest(c, "Unsupported media type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer file.Close()

	key := storage.GenerateKey("courses", fileHeader.Filename)
	url, err := h.spacesClient.UploadFile(c.Context(), key, file, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	if isImage {
		course.ImageURL = url
	} else {
		course.VideoURL = url
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}
