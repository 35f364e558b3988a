package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// PropertyHandler handles the property catalog routes
type PropertyHandler struct {
	Properties *services.PropertyService
}

// List handles GET /api/properties
// @Summary List published properties
// @Tags Properties
// @Produce json
// @Param city query string false "City"
// @Param minBedrooms query int false "Minimum bedrooms"
// @Param maxRent query string false "Maximum base rent"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Property}
// @Router /properties [get]
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	properties, err := h.Properties.List(c.UserContext(), parsePropertyFilter(c))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, properties, fiber.StatusOK)
}

// Get handles GET /api/properties/:id
// @Summary Get a property with its units
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Property}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /properties/{id} [get]
func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	property, err := h.Properties.Get(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, property, fiber.StatusOK)
}

// Create handles POST /api/properties
// @Summary List a new property
// @Tags Properties
// @Accept json
// @Produce json
// @Param property body api.PropertyInput true "Property"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Property}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	var input api.PropertyInput
	if err := bindJSON(c, &input); err != nil {
		return utils.ErrorFrom(c, err)
	}

	property, err := h.Properties.Create(c.UserContext(), middleware.CurrentUser(c), input)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, property, fiber.StatusCreated)
}

// AddUnit handles POST /api/properties/:id/units
// @Summary Add a unit to a property
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param unit body api.UnitInput true "Unit"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Unit}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties/{id}/units [post]
func (h *PropertyHandler) AddUnit(c *fiber.Ctx) error {
	var input api.UnitInput
	if err := bindJSON(c, &input); err != nil {
		return utils.ErrorFrom(c, err)
	}

	unit, err := h.Properties.AddUnit(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), input)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, unit, fiber.StatusCreated)
}

// Like handles POST /api/properties/:id/like
// @Summary Save a property
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=api.LikeState}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties/{id}/like [post]
func (h *PropertyHandler) Like(c *fiber.Ctx) error {
	state, err := h.Properties.Like(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, state, fiber.StatusOK)
}

// Unlike handles DELETE /api/properties/:id/like
// @Summary Remove a saved property
// @Tags Properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=api.LikeState}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /properties/{id}/like [delete]
func (h *PropertyHandler) Unlike(c *fiber.Ctx) error {
	state, err := h.Properties.Unlike(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, state, fiber.StatusOK)
}
