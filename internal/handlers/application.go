// application.go
//
// Rental marketplace backend for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-rentals.
// jam-build-rentals is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-rentals is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-rentals.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// ApplicationHandler handles application routes
type ApplicationHandler struct {
	Apps *services.ApplicationService
}

// Upsert handles POST /api/application
// @Summary Save an application
// @Description Create a draft application, or update the content of one the caller owns. Status is never changed.
// @Tags Applications
// @Accept json
// @Produce json
// @Param application body api.ApplicationForm true "Application fields"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application [post]
func (h *ApplicationHandler) Upsert(c *fiber.Ctx) error {
	var form api.ApplicationForm
	if err := bindJSON(c, &form); err != nil {
		return utils.ErrorFrom(c, err)
	}

	app, _, err := h.Apps.Upsert(c.UserContext(), middleware.CurrentUser(c), form)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// Get handles GET /api/application/:id
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	app, err := h.Apps.Get(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// List handles GET /api/applications
// @Summary List the caller's applications
// @Tags Applications
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Application}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	apps, err := h.Apps.ListForUser(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, apps, fiber.StatusOK)
}

// Submit handles POST /api/application/submit
// @Summary Submit an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body api.ApplicationIDRequest true "Application to submit"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/submit [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req api.ApplicationIDRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}

	app, err := h.Apps.Submit(c.UserContext(), middleware.CurrentUser(c), req.ApplicationID)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// Withdraw handles POST /api/application/withdraw
// @Summary Withdraw an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body api.ApplicationIDRequest true "Application to withdraw"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/withdraw [post]
func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	var req api.ApplicationIDRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}

	app, err := h.Apps.Withdraw(c.UserContext(), middleware.CurrentUser(c), req.ApplicationID)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// UpdateStatus handles PATCH /api/application/status
// @Summary Set the status of any application
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body api.StatusRequest true "Target status"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Application}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req api.StatusRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}

	app, err := h.Apps.UpdateStatus(c.UserContext(), middleware.CurrentUser(c), req.ApplicationID, req.Status)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// CreateSnapshot handles POST /api/application/snapshot
// @Summary Snapshot an application
// @Description Freeze the application and the applicant's profile into an immutable record
// @Tags Applications
// @Accept json
// @Produce json
// @Param request body api.SnapshotRequest true "Application to snapshot"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.ApplicationSnapshot}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/snapshot [post]
func (h *ApplicationHandler) CreateSnapshot(c *fiber.Ctx) error {
	var req api.SnapshotRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}

	snapshot, err := h.Apps.CreateSnapshot(c.UserContext(), middleware.CurrentUser(c), req.ApplicationID, req.Note)
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, snapshot, fiber.StatusCreated)
}

// ListSnapshots handles GET /api/application/:id/snapshots
// @Summary List the snapshots of an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.ApplicationSnapshot}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/{id}/snapshots [get]
func (h *ApplicationHandler) ListSnapshots(c *fiber.Ctx) error {
	snapshots, err := h.Apps.ListSnapshots(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, snapshots, fiber.StatusOK)
}

// LatestSnapshot handles GET /api/application/:id/snapshots/latest
// @Summary Get the newest snapshot of an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.ApplicationSnapshot}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /application/{id}/snapshots/latest [get]
func (h *ApplicationHandler) LatestSnapshot(c *fiber.Ctx) error {
	snapshot, err := h.Apps.LatestSnapshot(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.ErrorFrom(c, err)
	}
	return utils.SuccessResponse(c, snapshot, fiber.StatusOK)
}
