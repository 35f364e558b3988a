package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// AdminHandler handles user administration routes
type AdminHandler struct {
	Roles *services.RoleService
}

// SetRole handles PATCH /api/admin/users/:id/role
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body api.RoleRequest true "New role"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	var req api.RoleRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}

	row, err := h.Roles.SetRole(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req.Role)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"userId": row.UserID, "role": row.Role}, fiber.StatusOK)
}
