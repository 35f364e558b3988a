package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// ProfileHandler handles the signed-in user's profile and documents
type ProfileHandler struct {
	Profiles  *services.ProfileService
	Documents *services.DocumentService
}

// Get handles GET /api/user/profile
// @Summary Get the user document
// @Tags Profile
// @Produce json
// @Success 200 {object} services.ProfileDocument
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /user/profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	doc, err := h.Profiles.Get(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

// Patch handles PATCH /api/user/profile
// @Summary Update the user document
// @Description Applies allow-listed keys only; other keys are ignored
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body map[string]interface{} true "Fields to change"
// @Success 200 {object} services.ProfileDocument
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /user/profile [patch]
func (h *ProfileHandler) Patch(c *fiber.Ctx) error {
	body := map[string]json.RawMessage{}
	if err := bindJSON(c, &body); err != nil {
		return utils.ErrorFrom(c, err)
	}

	doc, err := h.Profiles.Patch(c.UserContext(), middleware.CurrentUser(c), body)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

// UploadDocument handles POST /api/user/documents
// @Summary Get an upload URL for an applicant document
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body api.DocumentUploadRequest true "Document to upload"
// @Success 201 {object} utils.SuccessResponseStruct{data=api.DocumentUpload}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /user/documents [post]
func (h *ProfileHandler) UploadDocument(c *fiber.Ctx) error {
	var req api.DocumentUploadRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}

	upload, err := h.Documents.PresignUpload(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, upload, fiber.StatusCreated)
}
