package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/policy"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"gorm.io/gorm"
)

// DefaultRole is held by any identity without a role row
const DefaultRole = models.RoleTenant

// RoleService reads and manages the one role each identity holds, and the
// local mirror of the provider's account
type RoleService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

// NewRoleService creates a RoleService
func NewRoleService(db *gorm.DB, log *slog.Logger) *RoleService {
	return &RoleService{DB: db, Log: log}
}

// Lookup returns the identity's role and its local account row, if any.
// A missing role row means the default role.
func (s *RoleService) Lookup(ctx context.Context, userID string) (models.Role, *models.User, error) {
	db := s.DB.WithContext(ctx)

	var row models.UserRole
	role := DefaultRole
	err := db.Where("user_id = ?", userID).First(&row).Error
	switch {
	case err == nil:
		parsed, ok := models.ParseRole(string(row.Role))
		if !ok {
			return "", nil, fmt.Errorf("user %s has unknown role %q", userID, row.Role)
		}
		role = parsed
	case database.IsNotFound(err):
	default:
		return "", nil, fmt.Errorf("failed to read role: %w", err)
	}

	var account models.User
	err = db.Where("id = ?", userID).First(&account).Error
	switch {
	case err == nil:
		return role, &account, nil
	case database.IsNotFound(err):
		return role, nil, nil
	default:
		return "", nil, fmt.Errorf("failed to read account: %w", err)
	}
}

// EnsureUser creates the local account and default role rows on first sight of
// an identity. Existing rows are left alone.
func (s *RoleService) EnsureUser(ctx context.Context, identity *Identity) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := models.User{ID: identity.ID}
		err := tx.Where(models.User{ID: identity.ID}).
			Attrs(models.User{Email: identity.Email, Name: identity.Name, Image: identity.Image, Phone: identity.Phone}).
			FirstOrCreate(&account).Error
		if err != nil && !database.IsDuplicateKey(err) {
			return fmt.Errorf("failed to create account: %w", err)
		}

		row := models.UserRole{UserID: identity.ID}
		err = tx.Where(models.UserRole{UserID: identity.ID}).
			Attrs(models.UserRole{Role: DefaultRole}).
			FirstOrCreate(&row).Error
		if err != nil && !database.IsDuplicateKey(err) {
			return fmt.Errorf("failed to create role: %w", err)
		}
		return nil
	})
}

// GetRole returns the role of any identity
func (s *RoleService) GetRole(ctx context.Context, userID string) (models.Role, error) {
	role, _, err := s.Lookup(ctx, userID)
	return role, err
}

// SetRole changes the role of userID. The actor must outrank both the role
// granted and the target's current role.
func (s *RoleService) SetRole(ctx context.Context, actor *models.SessionUser, userID, value string) (*models.UserRole, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	if !policy.CanManageUsers(actor) {
		return nil, types.Forbidden("Admin role required")
	}
	if userID == "" {
		return nil, types.InvalidInput("user id is required")
	}
	role, ok := models.ParseRole(value)
	if !ok {
		return nil, types.InvalidInput(fmt.Sprintf("Invalid role '%s'", value))
	}
	if !policy.CanGrant(actor, role) {
		return nil, types.Forbidden(fmt.Sprintf("You may not grant the role '%s'", role))
	}

	var result models.UserRole
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.UserRole
		err := tx.Where("user_id = ?", userID).First(&row).Error
		switch {
		case err == nil:
			if !policy.CanGrant(actor, row.Role) {
				return types.Forbidden("You may not change the role of this user")
			}
			if err := tx.Model(&row).Update("role", role).Error; err != nil {
				return err
			}
			row.Role = role
		case database.IsNotFound(err):
			row = models.UserRole{UserID: userID, Role: role}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		default:
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, storeError(s.Log, "Failed to update role", err)
	}

	s.Log.Info("role changed", "user", userID, "role", role, "by", actor.ID)
	return &result, nil
}
