package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/localnerve/jam-build-rentals/internal/utils"
)

// AccountProvider signs users up and in with the identity provider
type AccountProvider interface {
	Login(ctx context.Context, email, password string) (string, *services.Identity, error)
	SignUp(ctx context.Context, email, password string) (string, *services.Identity, error)
}

// AuthHandler handles the session and login routes
type AuthHandler struct {
	Roles    *services.RoleService
	Accounts AccountProvider
	Gate     *middleware.AuthGate
	Log      *slog.Logger
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Description Returns the signed-in user, or null for anonymous requests
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": middleware.CurrentUser(c)})
}

// LoginURL handles GET /api/auth/login-url
// @Summary Hosted login URL
// @Tags Auth
// @Produce json
// @Param next query string false "Path to return to after login"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /auth/login-url [get]
func (h *AuthHandler) LoginURL(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.Map{"url": h.Gate.RequestAuth(c.Query("next"))}, fiber.StatusOK)
}

// Callback handles GET /api/auth/callback
// @Summary Login callback
// @Description Records the signed-in user locally and redirects to a path on this site
// @Tags Auth
// @Param next query string false "Path to return to"
// @Success 302
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user != nil {
		err := h.Roles.EnsureUser(c.UserContext(), &services.Identity{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Image: user.Image,
			Phone: user.Phone,
		})
		if err != nil {
			h.Log.Error("failed to record user on login", "user", user.ID, "error", err)
		}
	}
	return c.Redirect(middleware.SafeRedirect(c.Query("next")), fiber.StatusFound)
}

// Login handles POST /api/auth/login
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body api.CredentialsRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct{data=api.LoginResult}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.exchange(c, h.Accounts.Login, types.Unauthorized("Invalid email or password"))
}

// SignUp handles POST /api/auth/signup
// @Summary Create an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body api.CredentialsRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct{data=api.LoginResult}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	return h.exchange(c, h.Accounts.SignUp, types.InvalidInput("Signup failed"))
}

type credentialExchange func(ctx context.Context, email, password string) (string, *services.Identity, error)

func (h *AuthHandler) exchange(c *fiber.Ctx, call credentialExchange, failure *types.CustomError) error {
	var req api.CredentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ErrorFrom(c, err)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return utils.ErrorFrom(c, types.InvalidInput("email and password are required"))
	}

	ctx := c.UserContext()
	token, identity, err := call(ctx, email, req.Password)
	if err != nil {
		h.Log.Info("credential exchange rejected", "email", email, "error", err)
		return utils.ErrorFrom(c, failure)
	}

	if err := h.Roles.EnsureUser(ctx, identity); err != nil {
		h.Log.Error("failed to record user", "user", identity.ID, "error", err)
		return utils.ErrorFrom(c, types.Internal("Failed to record user", err))
	}
	role, _, err := h.Roles.Lookup(ctx, identity.ID)
	if err != nil {
		return utils.ErrorFrom(c, types.Internal("Failed to read role", err))
	}

	return utils.SuccessResponse(c, api.LoginResult{
		AccessToken: token,
		User: &models.SessionUser{
			ID:    identity.ID,
			Email: identity.Email,
			Name:  identity.Name,
			Image: identity.Image,
			Phone: identity.Phone,
			Role:  role,
		},
	}, fiber.StatusOK)
}
