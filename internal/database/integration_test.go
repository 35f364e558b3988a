// integration_test.go
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

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/testhelpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// Runs against the database named by DB_TYPE (postgres by default) in a container
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	stack, err := testhelpers.StartStack(ctx, t, testhelpers.StackOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { stack.Terminate(t) })

	cfg, err := stack.DBConfig(ctx)
	require.NoError(t, err)

	db, err := database.Connect(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.AutoMigrate(db), "migrating twice is harmless")

	t.Run("duplicate key", func(t *testing.T) {
		require.NoError(t, db.Create(&models.User{ID: "alice", Email: "alice@example.com"}).Error)
		err := db.Create(&models.User{ID: "alice", Email: "alice@example.com"}).Error
		assert.True(t, database.IsDuplicateKey(err), "got %v", err)
	})

	t.Run("foreign key", func(t *testing.T) {
		err := db.Create(&models.Application{
			ID:              uuid.NewString(),
			UserID:          "alice",
			PropertyID:      uuid.NewString(),
			ApplicationType: models.ApplicationIndividual,
			Status:          models.StatusDraft,
			TotalRent:       decimal.NewFromInt(900),
			OccupancyType:   models.OccupancySingle,
		}).Error
		assert.True(t, database.IsForeignKeyViolation(err), "got %v", err)
	})

	t.Run("not found", func(t *testing.T) {
		var property models.Property
		err := db.Where("id = ?", uuid.NewString()).First(&property).Error
		assert.True(t, database.IsNotFound(err))
	})

	t.Run("decimal round trip", func(t *testing.T) {
		property := models.Property{
			ID: uuid.NewString(), OwnerID: "landlord", Title: "Flat", Address: "1 Road",
			City: "Leeds", PropertyType: "flat", BaseRent: decimal.RequireFromString("1234.56"),
		}
		require.NoError(t, db.Create(&property).Error)

		var loaded models.Property
		require.NoError(t, db.Where("id = ?", property.ID).First(&loaded).Error)
		assert.True(t, property.BaseRent.Equal(loaded.BaseRent), "got %s", loaded.BaseRent)
	})
}
