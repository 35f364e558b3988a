package testhelpers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/server"
	"gorm.io/gorm"
)

// NewTestConfig is a configuration with every external service pointed nowhere
func NewTestConfig() *config.Config {
	return &config.Config{
		Port:          "3000",
		PublicURL:     "http://localhost:3000",
		LogLevel:      "error",
		DBType:        "sqlite-nocgo",
		DBDatabase:    ":memory:",
		AuthzURL:      "http://authorizer.test:8080",
		AuthzClientID: "test-client",
	}
}

// NewApp builds the full route table over db, authenticating through auth
func NewApp(db *gorm.DB, auth *FakeAuth) *fiber.App {
	return NewAppWithConfig(NewTestConfig(), db, auth)
}

// NewAppWithConfig is NewApp with a custom configuration
func NewAppWithConfig(cfg *config.Config, db *gorm.DB, auth *FakeAuth) *fiber.App {
	return server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Log:      logging.Discard(),
		Auth:     auth,
		Accounts: auth,
	})
}
