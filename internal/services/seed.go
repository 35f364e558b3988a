package services

import (
	"context"
	"encoding/json"

	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

type seedProperty struct {
	api.PropertyInput
	Units []api.UnitInput `json:"units"`
}

// Seed creates the properties in payload, owned by actor. A property with the
// same title and address as an existing one is skipped, so seeding twice is
// harmless. Returns how many properties were created.
func (s *PropertyService) Seed(ctx context.Context, actor *models.SessionUser, payload []byte) (int, error) {
	var entries []seedProperty
	if err := json.Unmarshal(payload, &entries); err != nil {
		return 0, types.InvalidInput("seed data is not a list of properties: " + err.Error())
	}

	created := 0
	for _, entry := range entries {
		var existing models.Property
		err := s.DB.WithContext(ctx).
			Where("title = ? AND address = ?", entry.Title, entry.Address).
			First(&existing).Error
		if err == nil {
			s.Log.Debug("seed property exists", "property", existing.ID, "title", existing.Title)
			continue
		}
		if !database.IsNotFound(err) {
			return created, storeError(s.Log, "Failed to check seed property", err)
		}

		property, err := s.Create(ctx, actor, entry.PropertyInput)
		if err != nil {
			return created, err
		}
		for _, unit := range entry.Units {
			if _, err := s.AddUnit(ctx, actor, property.ID, unit); err != nil {
				return created, err
			}
		}
		created++
	}

	s.Log.Info("seeded properties", "created", created, "skipped", len(entries)-created)
	return created, nil
}
