// properties.go
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

package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/policy"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PropertyService is the property catalog
type PropertyService struct {
	DB  *gorm.DB
	Log *slog.Logger
	Now func() time.Time
}

// NewPropertyService creates a PropertyService
func NewPropertyService(db *gorm.DB, log *slog.Logger) *PropertyService {
	return &PropertyService{DB: db, Log: log, Now: time.Now}
}

// List returns published properties matching filter, newest first
func (s *PropertyService) List(ctx context.Context, filter api.PropertyFilter) ([]models.Property, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.DB.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "properties.list")).
		Where("published = ?", true)
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if filter.MinBedrooms > 0 {
		query = query.Where("bedrooms >= ?", filter.MinBedrooms)
	}
	if filter.MaxRent.Valid {
		query = query.Where("base_rent <= ?", filter.MaxRent.Decimal)
	}

	properties := []models.Property{}
	err := query.Order("created_at DESC").Order("id").Limit(limit).Offset(offset).Find(&properties).Error
	if err != nil {
		return nil, storeError(s.Log, "Failed to list properties", err)
	}
	return properties, nil
}

// Get returns a property with its units. Unpublished properties are only
// visible to whoever may edit them.
func (s *PropertyService) Get(ctx context.Context, actor *models.SessionUser, id string) (*models.Property, error) {
	property, err := s.load(s.DB.WithContext(ctx).Preload("Units"), id)
	if err != nil {
		return nil, err
	}
	if !property.Published && !policy.CanEditProperty(actor, property) {
		return nil, types.NotFound("Property not found")
	}
	return property, nil
}

func (s *PropertyService) load(tx *gorm.DB, id string) (*models.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, types.InvalidInput("property id is required")
	}
	var property models.Property
	err := tx.Where("id = ?", id).First(&property).Error
	if database.IsNotFound(err) {
		return nil, types.NotFound("Property not found")
	}
	if err != nil {
		return nil, storeError(s.Log, "Failed to load property", err)
	}
	return &property, nil
}

// Create lists a new property owned by actor
func (s *PropertyService) Create(ctx context.Context, actor *models.SessionUser, input api.PropertyInput) (*models.Property, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	if !policy.CanManageProperties(actor) {
		return nil, types.Forbidden("Landlord role required")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Address = strings.TrimSpace(input.Address)
	input.City = strings.TrimSpace(input.City)
	input.PropertyType = strings.TrimSpace(input.PropertyType)
	switch {
	case input.Title == "":
		return nil, types.InvalidInput("title is required")
	case input.Address == "":
		return nil, types.InvalidInput("address is required")
	case input.City == "":
		return nil, types.InvalidInput("city is required")
	case input.PropertyType == "":
		return nil, types.InvalidInput("propertyType is required")
	case input.Bedrooms.Int() < 0 || input.Bathrooms.Int() < 0:
		return nil, types.InvalidInput("bedrooms and bathrooms must not be negative")
	case input.BaseRent.IsNegative():
		return nil, types.InvalidInput("baseRent must not be negative")
	}

	var availableFrom *time.Time
	if v := strings.TrimSpace(input.AvailableFrom); v != "" {
		t, err := time.Parse(api.DateLayout, v)
		if err != nil {
			return nil, types.InvalidInput("availableFrom must be a date (YYYY-MM-DD)")
		}
		availableFrom = &t
	}

	now := s.Now().UTC()
	property := models.Property{
		ID:            uuid.NewString(),
		OwnerID:       actor.ID,
		Title:         input.Title,
		Description:   input.Description,
		Address:       input.Address,
		City:          input.City,
		Postcode:      strings.TrimSpace(input.Postcode),
		PropertyType:  input.PropertyType,
		Bedrooms:      input.Bedrooms.Int(),
		Bathrooms:     input.Bathrooms.Int(),
		BaseRent:      input.BaseRent,
		AvailableFrom: availableFrom,
		Published:     input.Published,
		Units:         []models.Unit{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.DB.WithContext(ctx).Create(&property).Error; err != nil {
		return nil, storeError(s.Log, "Failed to create property", err)
	}

	s.Log.Info("property created", "property", property.ID, "owner", actor.ID)
	return &property, nil
}

// AddUnit adds a rentable unit to a property the actor may edit
func (s *PropertyService) AddUnit(ctx context.Context, actor *models.SessionUser, propertyID string, input api.UnitInput) (*models.Unit, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	property, err := s.load(s.DB.WithContext(ctx), propertyID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditProperty(actor, property) {
		return nil, types.Forbidden("You may not edit this property")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, types.InvalidInput("name is required")
	}
	if input.Rent.IsNegative() {
		return nil, types.InvalidInput("rent must not be negative")
	}
	occupancy := input.OccupancyType
	switch occupancy {
	case "":
		occupancy = models.OccupancySingle
	case models.OccupancySingle, models.OccupancyDual:
	default:
		return nil, types.InvalidInput("occupancyType must be single or dual")
	}
	available := true
	if input.Available != nil {
		available = *input.Available
	}

	now := s.Now().UTC()
	unit := models.Unit{
		ID:            uuid.NewString(),
		PropertyID:    property.ID,
		Name:          name,
		Rent:          input.Rent,
		OccupancyType: occupancy,
		Available:     available,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Select keeps a false Available from falling back to the column default
	if err := s.DB.WithContext(ctx).Select("*").Create(&unit).Error; err != nil {
		return nil, storeError(s.Log, "Failed to create unit", err)
	}
	return &unit, nil
}

// Like records that actor saved a property. Liking twice is harmless.
func (s *PropertyService) Like(ctx context.Context, actor *models.SessionUser, propertyID string) (*api.LikeState, error) {
	return s.setLike(ctx, actor, propertyID, true)
}

// Unlike removes a saved property. Unliking twice is harmless.
func (s *PropertyService) Unlike(ctx context.Context, actor *models.SessionUser, propertyID string) (*api.LikeState, error) {
	return s.setLike(ctx, actor, propertyID, false)
}

func (s *PropertyService) setLike(ctx context.Context, actor *models.SessionUser, propertyID string, liked bool) (*api.LikeState, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}

	state := &api.LikeState{PropertyID: propertyID, Liked: liked}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.load(tx, propertyID)
		if err != nil {
			return err
		}
		if !property.Published && !policy.CanEditProperty(actor, property) {
			return types.NotFound("Property not found")
		}

		key := models.PropertyLike{UserID: actor.ID, PropertyID: property.ID}
		if liked {
			like := models.PropertyLike{}
			err = tx.Where(key).Attrs(models.PropertyLike{CreatedAt: s.Now().UTC()}).FirstOrCreate(&like).Error
		} else {
			err = tx.Where(key).Delete(&models.PropertyLike{}).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(&models.PropertyLike{}).Where("property_id = ?", property.ID).Count(&state.Likes).Error
	})
	if err != nil {
		return nil, storeError(s.Log, "Failed to update like", err)
	}
	return state, nil
}
