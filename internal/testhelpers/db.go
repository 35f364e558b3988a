// Package testhelpers holds shared fixtures for package tests: an in-memory
// store, a fake identity provider, a ready-made app and response assertions.
package testhelpers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite store with foreign keys enforced.
// The pool holds one connection so every query sees the same database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}
