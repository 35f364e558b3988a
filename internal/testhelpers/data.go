// data.go
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

package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateProperty stores a published property owned by ownerID
func CreateProperty(t *testing.T, db *gorm.DB, ownerID, city string) *models.Property {
	t.Helper()
	now := time.Now().UTC()
	property := models.Property{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        "Flat in " + city,
		Address:      "1 High Street",
		City:         city,
		PropertyType: "flat",
		Bedrooms:     2,
		Bathrooms:    1,
		BaseRent:     decimal.NewFromInt(1200),
		Published:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("Failed to create property: %v", err)
	}
	return &property
}

// CreateUnit stores a unit of property
func CreateUnit(t *testing.T, db *gorm.DB, propertyID, name string) *models.Unit {
	t.Helper()
	unit := models.Unit{
		ID:            uuid.NewString(),
		PropertyID:    propertyID,
		Name:          name,
		Rent:          decimal.NewFromInt(650),
		OccupancyType: models.OccupancySingle,
		Available:     true,
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("Failed to create unit: %v", err)
	}
	return &unit
}

// SetRole stores the role row of userID
func SetRole(t *testing.T, db *gorm.DB, userID string, role models.Role) {
	t.Helper()
	if err := db.Save(&models.UserRole{UserID: userID, Role: role, CreatedAt: time.Now(), UpdatedAt: time.Now()}).Error; err != nil {
		t.Fatalf("Failed to set role: %v", err)
	}
}

// CreateApplication stores an application of userID with the given status
func CreateApplication(t *testing.T, db *gorm.DB, userID, propertyID string, status models.Status) *models.Application {
	t.Helper()
	inclusions, _ := models.NewJSON(map[string]interface{}{})
	moveIn := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	app := models.Application{
		ID:              uuid.NewString(),
		UserID:          userID,
		PropertyID:      propertyID,
		ApplicationType: models.ApplicationIndividual,
		Status:          status,
		MoveInDate:      &moveIn,
		RentalDuration:  12,
		TotalRent:       decimal.NewFromInt(1200),
		Inclusions:      inclusions,
		OccupancyType:   models.OccupancySingle,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status != models.StatusDraft {
		app.SubmittedAt = &now
	}
	if err := db.Create(&app).Error; err != nil {
		t.Fatalf("Failed to create application: %v", err)
	}
	return &app
}
