package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProfileDocument is the user document served by the profile endpoints
type ProfileDocument struct {
	User               models.User                    `json:"user"`
	Role               models.Role                    `json:"role"`
	ApplicationProfile *models.UserApplicationProfile `json:"applicationProfile"`
}

// patchField maps one allowed body key to a column and a decoder for its value.
// A decoder returns nil for JSON null.
type patchField struct {
	column string
	decode func(json.RawMessage) (interface{}, error)
}

var userPatchFields = map[string]patchField{
	"name":  {"name", decodeString},
	"phone": {"phone", decodeString},
	"image": {"image", decodeString},
}

var profilePatchFields = map[string]patchField{
	"employmentStatus": {"employment_status", decodeString},
	"employer":         {"employer", decodeString},
	"jobTitle":         {"job_title", decodeString},
	"annualIncome":     {"annual_income", decodeDecimal},
	"hasGuarantor":     {"has_guarantor", decodeBool},
	"currentAddress":   {"current_address", decodeString},
	"currentRent":      {"current_rent", decodeDecimal},
	"yearsAtAddress":   {"years_at_address", decodeInt},
	"reasonForMoving":  {"reason_for_moving", decodeString},
	"hasPets":          {"has_pets", decodeBool},
	"isSmoker":         {"is_smoker", decodeBool},
	"occupants":        {"occupants", decodeInt},
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func decodeString(raw json.RawMessage) (interface{}, error) {
	if isNull(raw) {
		return nil, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	return v, nil
}

func decodeBool(raw json.RawMessage) (interface{}, error) {
	if isNull(raw) {
		return nil, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeInt(raw json.RawMessage) (interface{}, error) {
	if isNull(raw) {
		return nil, nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, fmt.Errorf("must not be negative")
	}
	return v, nil
}

func decodeDecimal(raw json.RawMessage) (interface{}, error) {
	if isNull(raw) {
		return nil, nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v.IsNegative() {
		return nil, fmt.Errorf("must not be negative")
	}
	return v, nil
}

// collect decodes the allowed keys of body into column updates. Other keys are ignored.
func collect(body map[string]json.RawMessage, allowed map[string]patchField) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	for key, raw := range body {
		field, ok := allowed[key]
		if !ok {
			continue
		}
		value, err := field.decode(raw)
		if err != nil {
			return nil, types.InvalidInput(fmt.Sprintf("Invalid value for '%s'", key))
		}
		updates[field.column] = value
	}
	return updates, nil
}

// ProfileService reads and patches the signed-in user's account and application profile
type ProfileService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

// NewProfileService creates a ProfileService
func NewProfileService(db *gorm.DB, log *slog.Logger) *ProfileService {
	return &ProfileService{DB: db, Log: log}
}

// Get returns the user document for actor
func (s *ProfileService) Get(ctx context.Context, actor *models.SessionUser) (*ProfileDocument, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	doc, err := s.read(s.DB.WithContext(ctx), actor)
	if err != nil {
		return nil, storeError(s.Log, "Failed to load profile", err)
	}
	return doc, nil
}

func (s *ProfileService) read(tx *gorm.DB, actor *models.SessionUser) (*ProfileDocument, error) {
	doc := &ProfileDocument{
		User: models.User{
			ID:    actor.ID,
			Email: actor.Email,
			Name:  actor.Name,
			Image: actor.Image,
			Phone: actor.Phone,
		},
		Role: actor.Role,
	}

	var account models.User
	err := tx.Where("id = ?", actor.ID).First(&account).Error
	switch {
	case err == nil:
		doc.User = account
	case database.IsNotFound(err):
	default:
		return nil, err
	}

	var profile models.UserApplicationProfile
	err = tx.Where("user_id = ?", actor.ID).First(&profile).Error
	switch {
	case err == nil:
		doc.ApplicationProfile = &profile
	case database.IsNotFound(err):
	default:
		return nil, err
	}

	return doc, nil
}

// Patch applies the allow-listed keys of body and returns the updated document
func (s *ProfileService) Patch(ctx context.Context, actor *models.SessionUser, body map[string]json.RawMessage) (*ProfileDocument, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}

	userUpdates, err := collect(body, userPatchFields)
	if err != nil {
		return nil, err
	}
	profileUpdates, err := collect(body, profilePatchFields)
	if err != nil {
		return nil, err
	}

	var doc *ProfileDocument
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			account := models.User{ID: actor.ID}
			err := tx.Where(models.User{ID: actor.ID}).
				Attrs(models.User{Email: actor.Email, Name: actor.Name, Image: actor.Image, Phone: actor.Phone}).
				FirstOrCreate(&account).Error
			if err != nil {
				return err
			}
			if err := tx.Model(&account).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		if len(profileUpdates) > 0 {
			profile := models.UserApplicationProfile{UserID: actor.ID}
			if err := tx.Where(models.UserApplicationProfile{UserID: actor.ID}).FirstOrCreate(&profile).Error; err != nil {
				return err
			}
			if err := tx.Model(&profile).Updates(profileUpdates).Error; err != nil {
				return err
			}
		}

		doc, err = s.read(tx, actor)
		return err
	})
	if err != nil {
		return nil, storeError(s.Log, "Failed to update profile", err)
	}
	return doc, nil
}
