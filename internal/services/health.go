package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Storage      string            `json:"storage"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(message string, err error) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = fmt.Sprintf("%s: %v", message, err)
	} else {
		r.ErrorMessage += fmt.Sprintf("; %s: %v", message, err)
	}
}

// HealthCheck checks the database, the auth provider and, when configured,
// the storage endpoint
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Storage: "disabled",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.fail("Database connection error", err)
		log.Warn("health check failed", "component", "database", "error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.fail("Database ping failed", err)
		log.Warn("health check failed", "component", "database", "error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.Details["authorizer_error"] = err.Error()
		result.fail("Authorizer ping failed", err)
		log.Warn("health check failed", "component", "authorizer", "error", err)
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if cfg.StorageEnabled() && cfg.S3Endpoint != "" {
		if err := utils.PingStorage(cfg.S3Endpoint); err != nil {
			result.Storage = "unreachable"
			result.Details["storage_error"] = err.Error()
			result.fail("Storage ping failed", err)
			log.Warn("health check failed", "component", "storage", "error", err)
		} else {
			result.Storage = "ok"
		}
	} else if cfg.StorageEnabled() {
		result.Storage = "ok"
	}

	if result.Status == "healthy" {
		log.Debug("health check passed")
	}

	return result
}
