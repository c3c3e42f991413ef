package document

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/model"
	"github.com/trawers/trawers-api/services/storage"
	"github.com/trawers/trawers-api/utils/middleware"
	"github.com/trawers/trawers-api/utils/pdfvalidation"
	"github.com/trawers/trawers-api/utils/response"
	"github.com/trawers/trawers-api/utils/validation"
)

// DocumentHandler handles user document uploads and listing
type DocumentHandler struct {
	db           *gorm.DB
	spacesClient *storage.SpacesClient
}

// NewDocumentHandler creates a new document handler. The storage client
// may be nil, in which case uploads are rejected with 503.
func NewDocumentHandler(db *gorm.DB, spacesClient *storage.SpacesClient) *DocumentHandler {
	return &DocumentHandler{
		db:           db,
		spacesClient: spacesClient,
	}
}

// UploadDocument handles POST /api/documents. Only PDF documents are
// accepted and they are validated before touching storage.
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if h.spacesClient == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "File storage is not configured", "STORAGE_UNAVAILABLE")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Missing file")
	}

	result, err := pdfvalidation.ValidatePDFFile(fileHeader, pdfvalidation.DefaultLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer file.Close()

	name := validation.SanitizeString(c.FormValue("name"))
	if name == "" {
		name = fileHeader.Filename
	}

	key := storage.GenerateKey("documents", fileHeader.Filename)
	url, err := h.spacesClient.UploadFile(c.Context(), key, file, "application/pdf")
	if err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	document := model.Document{
		UserID:     userID,
		Name:       name,
		URL:        url,
		StorageKey: key,
	}
	if err := h.db.Create(&document).Error; err != nil {
		// The row is the source of truth; an orphaned object is
		// cleaned up rather than left dangling.
		_ = h.spacesClient.DeleteFile(c.Context(), key)
		return response.InternalServerError(c, "Failed to save document")
	}

	return response.Created(c, document)
}

// ListMyDocuments handles GET /api/documents
func (h *DocumentHandler) ListMyDocuments(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	return h.listForUser(c, userID)
}

// ListUserDocuments handles GET /api/documents/:userId (admin)
func (h *DocumentHandler) ListUserDocuments(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	return h.listForUser(c, uint(userID))
}

func (h *DocumentHandler) listForUser(c *fiber.Ctx, userID uint) error {
	var documents []model.Document
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch documents")
	}

	return response.Success(c, documents)
}
