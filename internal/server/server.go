// Package server assembles the fiber application: global middleware, metrics,
// API docs and every route of the rentals API.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/handlers"
	"github.com/localnerve/jam-build-rentals/internal/middleware"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/localnerve/jam-build-rentals/internal/utils"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *slog.Logger
	Auth     services.Authenticator
	Accounts handlers.AccountProvider

	// Metrics registers /metrics; off in tests so collectors are registered once
	Metrics bool
	// AccessLog enables the fiber request logger
	AccessLog bool
}

// New builds the fiber app
func New(deps Deps) *fiber.App {
	cfg := deps.Config
	log := deps.Log

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(compress.New())

	if deps.Metrics {
		prometheus := fiberprometheus.New("rentals")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	app.Get("/swagger/*", swagger.HandlerDefault)

	roles := services.NewRoleService(deps.DB, log)
	resolver := services.NewSessionResolver(deps.Auth, roles, log)
	apps := services.NewApplicationService(deps.DB, log)

	applicationHandler := &handlers.ApplicationHandler{Apps: apps}
	authHandler := &handlers.AuthHandler{
		Roles:    roles,
		Accounts: deps.Accounts,
		Gate:     middleware.NewAuthGate(cfg.AuthzURL, cfg.PublicURL),
		Log:      log,
	}
	profileHandler := &handlers.ProfileHandler{
		Profiles:  services.NewProfileService(deps.DB, log),
		Documents: services.NewDocumentService(deps.DB, cfg, log),
	}
	propertyHandler := &handlers.PropertyHandler{Properties: services.NewPropertyService(deps.DB, log)}
	adminHandler := &handlers.AdminHandler{Roles: roles}

	api := app.Group("/api", middleware.VersionMiddleware(), middleware.Session(resolver))

	auth := api.Group("/auth")
	auth.Get("/me", authHandler.Me)
	auth.Get("/login-url", authHandler.LoginURL)
	auth.Get("/callback", authHandler.Callback)
	auth.Post("/login", middleware.NoStore(), authHandler.Login)
	auth.Post("/signup", middleware.NoStore(), authHandler.SignUp)

	user := middleware.RequireUser()
	admin := middleware.RequireRole(models.RoleAdmin)
	noStore := middleware.NoStore()

	application := api.Group("/application", noStore)
	application.Post("/", user, applicationHandler.Upsert)
	application.Post("/submit", user, applicationHandler.Submit)
	application.Post("/withdraw", user, applicationHandler.Withdraw)
	application.Post("/snapshot", user, applicationHandler.CreateSnapshot)
	application.Patch("/status", admin, applicationHandler.UpdateStatus)
	application.Get("/:id/snapshots/latest", user, applicationHandler.LatestSnapshot)
	application.Get("/:id/snapshots", user, applicationHandler.ListSnapshots)
	application.Get("/:id", user, applicationHandler.Get)
	api.Get("/applications", noStore, user, applicationHandler.List)

	profile := api.Group("/user", noStore, user)
	profile.Get("/profile", profileHandler.Get)
	profile.Patch("/profile", profileHandler.Patch)
	profile.Post("/documents", profileHandler.UploadDocument)

	properties := api.Group("/properties")
	properties.Get("/", propertyHandler.List)
	properties.Get("/:id", propertyHandler.Get)
	properties.Post("/", middleware.RequireRole(models.RoleLandlord), propertyHandler.Create)
	properties.Post("/:id/units", user, propertyHandler.AddUnit)
	properties.Post("/:id/like", user, propertyHandler.Like)
	properties.Delete("/:id/like", user, propertyHandler.Unlike)

	api.Patch("/admin/users/:id/role", noStore, admin, adminHandler.SetRole)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return app
}

// errorHandler renders errors returned by middleware and handlers
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var custom *types.CustomError
		var fe *fiber.Error
		if !errors.As(err, &custom) && !errors.As(err, &fe) {
			log.Error("unhandled error", "url", c.OriginalURL(), "error", err)
		}
		return utils.ErrorFrom(c, err)
	}
}

// ShutdownTimeout bounds graceful shutdown
const ShutdownTimeout = 10 * time.Second
