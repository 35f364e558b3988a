package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/localnerve/jam-build-rentals/internal/workflow"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// CreateSnapshot freezes the actor's application and profile into a new
// immutable snapshot row
func (s *ApplicationService) CreateSnapshot(ctx context.Context, actor *models.SessionUser, id string, note *string) (*models.ApplicationSnapshot, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}

	var snapshot models.ApplicationSnapshot
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := workflow.AuthorizeOwner(actor, app); err != nil {
			return err
		}

		var profile *models.UserApplicationProfile
		var row models.UserApplicationProfile
		err = tx.Where("user_id = ?", actor.ID).First(&row).Error
		switch {
		case err == nil:
			profile = &row
		case database.IsNotFound(err):
		default:
			return err
		}

		doc, err := workflow.BuildSnapshot(actor, profile, app)
		if err != nil {
			return err
		}
		payload, err := models.NewJSON(doc)
		if err != nil {
			return err
		}

		snapshot = models.ApplicationSnapshot{
			ID:            uuid.NewString(),
			ApplicationID: app.ID,
			Snapshot:      payload,
			CreatedBy:     actor.ID,
			Note:          note,
			CreatedAt:     s.now(),
		}
		return tx.Omit("Application").Create(&snapshot).Error
	})
	if err != nil {
		return nil, storeError(s.Log, "Failed to create snapshot", err)
	}

	snapshotsCreated.Inc()
	s.Log.Info("snapshot created", "application", snapshot.ApplicationID, "snapshot", snapshot.ID)
	return &snapshot, nil
}

// visibleApplication loads an application the actor may read
func (s *ApplicationService) visibleApplication(ctx context.Context, actor *models.SessionUser, id string) (*models.Application, error) {
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

// ListSnapshots returns the snapshots of an application, newest first
func (s *ApplicationService) ListSnapshots(ctx context.Context, actor *models.SessionUser, id string) ([]models.ApplicationSnapshot, error) {
	app, err := s.visibleApplication(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	snapshots := []models.ApplicationSnapshot{}
	err = s.DB.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "snapshots.list")).
		Where("application_id = ?", app.ID).
		Order("created_at DESC").
		Find(&snapshots).Error
	if err != nil {
		return nil, storeError(s.Log, "Failed to list snapshots", err)
	}
	return snapshots, nil
}

// LatestSnapshot returns the newest snapshot of an application
func (s *ApplicationService) LatestSnapshot(ctx context.Context, actor *models.SessionUser, id string) (*models.ApplicationSnapshot, error) {
	app, err := s.visibleApplication(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var snapshot models.ApplicationSnapshot
	err = s.DB.WithContext(ctx).
		Where("application_id = ?", app.ID).
		Order("created_at DESC").
		First(&snapshot).Error
	if database.IsNotFound(err) {
		return nil, types.NotFound("Application has no snapshots")
	}
	if err != nil {
		return nil, storeError(s.Log, "Failed to load snapshot", err)
	}
	return &snapshot, nil
}
