package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/server"
	"github.com/localnerve/jam-build-rentals/internal/services"

	_ "github.com/localnerve/jam-build-rentals/docs/api" // Swagger docs
)

// @title Rentals API
// @version 1.0.0
// @description Rental marketplace service: properties, tenant applications and their review workflow
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/jam-build-rentals
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Default("info", "text").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logging.Default(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Cookie sessions go to Authorizer; bearer tokens are verified locally when a secret is set
	authorizer := services.NewAuthorizerService(cfg, log)
	chain := services.AuthenticatorChain{authorizer}
	if cfg.AuthzJWTSecret != "" {
		chain = append(chain, services.NewJWTAuthenticator(cfg.AuthzJWTSecret))
	}

	app := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Log:       log,
		Auth:      chain,
		Accounts:  authorizer,
		Metrics:   true,
		AccessLog: true,
	})

	// Authorizer is initialized on the first authenticated request
	log.Info("authorizer will be initialized on first authenticated request", "url", cfg.AuthzURL)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("gracefully shutting down")
		if err := app.ShutdownWithTimeout(server.ShutdownTimeout); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("starting server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
