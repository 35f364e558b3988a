// applications.go
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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/policy"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/localnerve/jam-build-rentals/internal/workflow"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// applicationContentColumns are the columns an upsert may change
var applicationContentColumns = []string{
	"property_id",
	"unit_id",
	"application_type",
	"move_in_date",
	"rental_duration",
	"proposed_rent",
	"total_rent",
	"inclusions",
	"occupancy_type",
	"message",
	"updated_at",
}

// ApplicationService is the application record store and its status transitions
type ApplicationService struct {
	DB  *gorm.DB
	Log *slog.Logger
	Now func() time.Time
}

// NewApplicationService creates an ApplicationService
func NewApplicationService(db *gorm.DB, log *slog.Logger) *ApplicationService {
	return &ApplicationService{DB: db, Log: log, Now: time.Now}
}

func (s *ApplicationService) now() time.Time {
	return s.Now().UTC()
}

// load fetches one application, mapping absence to NotFound
func (s *ApplicationService) load(tx *gorm.DB, id string) (*models.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, types.InvalidInput("applicationId is required")
	}
	var app models.Application
	err := tx.Where("id = ?", id).First(&app).Error
	if database.IsNotFound(err) {
		return nil, types.NotFound("Application not found")
	}
	if err != nil {
		return nil, storeError(s.Log, "Failed to load application", err)
	}
	return &app, nil
}

// applicationFields is a validated form ready to be written
type applicationFields struct {
	PropertyID      string
	UnitID          *string
	ApplicationType models.ApplicationType
	MoveInDate      *time.Time
	RentalDuration  int
	Form            api.ApplicationForm
	Inclusions      models.JSON
	OccupancyType   models.OccupancyType
}

func validateForm(form api.ApplicationForm) (*applicationFields, error) {
	fields := &applicationFields{Form: form}

	fields.PropertyID = strings.TrimSpace(form.PropertyID)
	if fields.PropertyID == "" {
		return nil, types.InvalidInput("propertyId is required")
	}
	if form.UnitID != nil && strings.TrimSpace(*form.UnitID) != "" {
		unit := strings.TrimSpace(*form.UnitID)
		fields.UnitID = &unit
	}

	switch form.ApplicationType {
	case "":
		fields.ApplicationType = models.ApplicationIndividual
	case models.ApplicationIndividual, models.ApplicationGroup:
		fields.ApplicationType = form.ApplicationType
	default:
		return nil, types.InvalidInput(fmt.Sprintf("Invalid applicationType '%s'", form.ApplicationType))
	}

	switch form.OccupancyType {
	case "":
		fields.OccupancyType = models.OccupancySingle
	case models.OccupancySingle, models.OccupancyDual:
		fields.OccupancyType = form.OccupancyType
	default:
		return nil, types.InvalidInput(fmt.Sprintf("Invalid occupancyType '%s'", form.OccupancyType))
	}

	moveIn, err := form.ParseMoveInDate()
	if err != nil {
		return nil, types.InvalidInput("moveInDate must be a date (YYYY-MM-DD)")
	}
	fields.MoveInDate = moveIn

	fields.RentalDuration = form.RentalDuration.Int()
	if fields.RentalDuration < 0 {
		return nil, types.InvalidInput("rentalDuration must not be negative")
	}
	if form.TotalRent.IsNegative() {
		return nil, types.InvalidInput("totalRent must not be negative")
	}
	if form.ProposedRent.Valid && form.ProposedRent.Decimal.IsNegative() {
		return nil, types.InvalidInput("proposedRent must not be negative")
	}

	inclusions := form.Inclusions
	if inclusions == nil {
		inclusions = map[string]interface{}{}
	}
	fields.Inclusions, err = models.NewJSON(inclusions)
	if err != nil {
		return nil, types.InvalidInput("inclusions must be a JSON object")
	}

	return fields, nil
}

func (f *applicationFields) apply(app *models.Application) {
	app.PropertyID = f.PropertyID
	app.UnitID = f.UnitID
	app.ApplicationType = f.ApplicationType
	app.MoveInDate = f.MoveInDate
	app.RentalDuration = f.RentalDuration
	app.ProposedRent = f.Form.ProposedRent
	app.TotalRent = f.Form.TotalRent
	app.Inclusions = f.Inclusions
	app.OccupancyType = f.OccupancyType
	app.Message = f.Form.Message
}

// Upsert creates a draft application or updates the content of one the actor
// owns. Status is never changed here.
func (s *ApplicationService) Upsert(ctx context.Context, actor *models.SessionUser, form api.ApplicationForm) (*models.Application, bool, error) {
	if actor == nil {
		return nil, false, types.Unauthorized("Authentication required")
	}
	fields, err := validateForm(form)
	if err != nil {
		return nil, false, err
	}

	id := strings.TrimSpace(form.ApplicationID)
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, false, types.InvalidInput("applicationId must be a UUID")
		}
	}

	var (
		result  models.Application
		created bool
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()

		if id != "" {
			var existing models.Application
			err := tx.Where("id = ?", id).First(&existing).Error
			switch {
			case err == nil:
				if !policy.IsOwner(actor, &existing) {
					return types.Forbidden("You do not own this application")
				}
				fields.apply(&existing)
				existing.UpdatedAt = now
				if err := tx.Model(&existing).Select(applicationContentColumns).Updates(&existing).Error; err != nil {
					return err
				}
				result = existing
				return nil
			case database.IsNotFound(err):
			default:
				return err
			}
		} else {
			id = uuid.NewString()
		}

		app := models.Application{
			ID:        id,
			UserID:    actor.ID,
			Status:    models.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}
		fields.apply(&app)
		if err := tx.Omit("Property", "Unit").Create(&app).Error; err != nil {
			return err
		}
		result = app
		created = true
		return nil
	})
	if err != nil {
		applicationSaves.WithLabelValues("error").Inc()
		return nil, false, storeError(s.Log, "Failed to save application", err)
	}

	if created {
		applicationSaves.WithLabelValues("created").Inc()
	} else {
		applicationSaves.WithLabelValues("updated").Inc()
	}
	s.Log.Debug("application saved", "application", result.ID, "user", actor.ID, "created", created)
	return &result, created, nil
}

// Get returns one application to its owner, an admin or the property's landlord
func (s *ApplicationService) Get(ctx context.Context, actor *models.SessionUser, id string) (*models.Application, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	app, err := s.load(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// authorizeRead lets the applicant and admins through, and otherwise looks up
// whether actor is the landlord of the property applied for
func (s *ApplicationService) authorizeRead(ctx context.Context, actor *models.SessionUser, app *models.Application) error {
	if policy.CanViewApplication(actor, app, "") {
		return nil
	}
	if !policy.CanApproveApplications(actor) {
		return types.Forbidden("You do not own this application")
	}

	var owners []string
	err := s.DB.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", app.PropertyID).
		Pluck("owner_id", &owners).Error
	if err != nil {
		return storeError(s.Log, "Failed to load property", err)
	}
	if len(owners) == 0 || !policy.CanViewApplication(actor, app, owners[0]) {
		return types.Forbidden("You do not own this application")
	}
	return nil
}

// ListForUser returns the actor's applications, newest first
func (s *ApplicationService) ListForUser(ctx context.Context, actor *models.SessionUser) ([]models.Application, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}

	query := s.DB.WithContext(ctx).Clauses(hints.CommentBefore("select", "applications.list_for_user"))
	if s.DB.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_applications_user_created"))
	}

	apps := []models.Application{}
	err := query.Where("user_id = ?", actor.ID).Order("created_at DESC").Order("id").Find(&apps).Error
	if err != nil {
		return nil, storeError(s.Log, "Failed to list applications", err)
	}
	return apps, nil
}

// transition loads the application, runs check against it and writes updates
func (s *ApplicationService) transition(
	ctx context.Context,
	name string,
	id string,
	check func(app *models.Application) error,
	target func(app *models.Application, now time.Time) map[string]interface{},
) (*models.Application, error) {
	var result *models.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := check(app); err != nil {
			return err
		}

		now := s.now()
		updates := target(app, now)
		updates["updated_at"] = now
		if err := tx.Model(app).Updates(updates).Error; err != nil {
			return err
		}

		// Re-read so the caller sees exactly what was stored
		var stored models.Application
		if err := tx.Where("id = ?", app.ID).First(&stored).Error; err != nil {
			return err
		}
		result = &stored
		return nil
	})
	if err != nil {
		return nil, storeError(s.Log, "Failed to update application", err)
	}

	applicationTransitions.WithLabelValues(name, string(result.Status)).Inc()
	s.Log.Info("application status changed", "application", result.ID, "transition", name, "status", result.Status)
	return result, nil
}

// Submit moves the actor's application to submitted and stamps submitted_at.
// Check order: authentication, presence, ownership, then the status rule.
func (s *ApplicationService) Submit(ctx context.Context, actor *models.SessionUser, id string) (*models.Application, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	return s.transition(ctx, workflow.TransitionSubmit, id,
		func(app *models.Application) error {
			if err := workflow.AuthorizeOwner(actor, app); err != nil {
				return err
			}
			return workflow.CheckSubmit(app.Status)
		},
		func(app *models.Application, now time.Time) map[string]interface{} {
			return map[string]interface{}{
				"status":       string(models.StatusSubmitted),
				"submitted_at": now,
			}
		})
}

// Withdraw moves the actor's submitted or under-review application to withdrawn
func (s *ApplicationService) Withdraw(ctx context.Context, actor *models.SessionUser, id string) (*models.Application, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	return s.transition(ctx, workflow.TransitionWithdraw, id,
		func(app *models.Application) error {
			if err := workflow.AuthorizeOwner(actor, app); err != nil {
				return err
			}
			return workflow.CheckWithdraw(app.Status)
		},
		func(app *models.Application, now time.Time) map[string]interface{} {
			return map[string]interface{}{"status": string(models.StatusWithdrawn)}
		})
}

// UpdateStatus sets any status on any application. Admins only.
// Check order: authentication, role, status value, then existence.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor *models.SessionUser, id, status string) (*models.Application, error) {
	if err := workflow.AuthorizeStatusUpdate(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, types.InvalidInput("applicationId is required")
	}
	target, err := workflow.ParseAdminStatus(status)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, workflow.TransitionAdmin, id,
		func(app *models.Application) error { return nil },
		func(app *models.Application, now time.Time) map[string]interface{} {
			updates := map[string]interface{}{"status": string(target)}
			switch {
			case target == models.StatusDraft:
				updates["submitted_at"] = nil
			case target == models.StatusSubmitted && app.IsDraft():
				updates["submitted_at"] = now
			}
			return updates
		})
}
