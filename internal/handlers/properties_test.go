package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyCatalog(t *testing.T) {
	f := newFixture(t)
	testhelpers.CreateProperty(t, f.db, "landlord", "York")

	resp := f.do(t, http.MethodGet, "/api/properties", nil, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	var list struct {
		Data []models.Property `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &list)
	assert.Len(t, list.Data, 2)

	resp = f.do(t, http.MethodGet, "/api/properties?city=leeds", nil, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	testhelpers.ParseJSON(t, resp, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, f.property.ID, list.Data[0].ID)

	resp = f.do(t, http.MethodGet, "/api/properties?maxRent=100", nil, nil)
	testhelpers.ParseJSON(t, resp, &list)
	assert.Empty(t, list.Data)

	resp = f.do(t, http.MethodGet, "/api/properties/missing", nil, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestCreatePropertyAndUnits(t *testing.T) {
	f := newFixture(t)
	input := map[string]interface{}{
		"title":        "Terraced house",
		"address":      "4 Mill Lane",
		"city":         "Bradford",
		"propertyType": "house",
		"bedrooms":     "3",
		"baseRent":     "1450.00",
	}

	resp := f.do(t, http.MethodPost, "/api/properties", input, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = f.do(t, http.MethodPost, "/api/properties", input, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusUnauthorized)

	resp = f.do(t, http.MethodPost, "/api/properties", map[string]interface{}{"title": "No address"}, f.landlord)
	testhelpers.AssertStatus(t, resp, fiber.StatusBadRequest)

	resp = f.do(t, http.MethodPost, "/api/properties", input, f.landlord)
	testhelpers.AssertStatus(t, resp, fiber.StatusCreated)
	var created struct {
		Data models.Property `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &created)
	assert.Equal(t, "landlord", created.Data.OwnerID)
	assert.Equal(t, 3, created.Data.Bedrooms)
	assert.False(t, created.Data.Published)

	// Unpublished properties are hidden from everyone but their editors
	resp = f.do(t, http.MethodGet, "/api/properties/"+created.Data.ID, nil, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusNotFound)
	resp = f.do(t, http.MethodGet, "/api/properties/"+created.Data.ID, nil, f.landlord)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)

	unit := map[string]interface{}{"name": "Room 1", "rent": 600, "available": false}
	resp = f.do(t, http.MethodPost, "/api/properties/"+created.Data.ID+"/units", unit, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusForbidden)

	resp = f.do(t, http.MethodPost, "/api/properties/missing/units", unit, f.landlord)
	testhelpers.AssertStatus(t, resp, fiber.StatusNotFound)

	resp = f.do(t, http.MethodPost, "/api/properties/"+created.Data.ID+"/units", unit, f.landlord)
	testhelpers.AssertStatus(t, resp, fiber.StatusCreated)
	var addedUnit struct {
		Data models.Unit `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &addedUnit)
	assert.False(t, addedUnit.Data.Available)
	assert.Equal(t, models.OccupancySingle, addedUnit.Data.OccupancyType)

	// Admins may edit any property
	resp = f.do(t, http.MethodPost, "/api/properties/"+created.Data.ID+"/units", map[string]interface{}{"name": "Room 2", "rent": 620}, f.admin)
	testhelpers.AssertStatus(t, resp, fiber.StatusCreated)

	resp = f.do(t, http.MethodGet, "/api/properties/"+created.Data.ID, nil, f.landlord)
	var withUnits struct {
		Data models.Property `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &withUnits)
	assert.Len(t, withUnits.Data.Units, 2)

	var stored models.Unit
	require.NoError(t, f.db.First(&stored, "id = ?", addedUnit.Data.ID).Error)
	assert.False(t, stored.Available)
}

func TestApplicationRejectsUnknownUnit(t *testing.T) {
	f := newFixture(t)
	unit := testhelpers.CreateUnit(t, f.db, f.property.ID, "Room A")

	resp := f.do(t, http.MethodPost, "/api/application", map[string]interface{}{
		"propertyId": f.property.ID,
		"unitId":     unit.ID,
		"moveInDate": "2026-11-01",
	}, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)

	resp = f.do(t, http.MethodPost, "/api/application", map[string]interface{}{
		"propertyId": f.property.ID,
		"unitId":     "no-such-unit",
		"moveInDate": "2026-11-01",
	}, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestLikes(t *testing.T) {
	f := newFixture(t)
	path := "/api/properties/" + f.property.ID + "/like"

	resp := f.do(t, http.MethodPost, path, nil, nil)
	testhelpers.AssertStatus(t, resp, fiber.StatusUnauthorized)

	for i := 0; i < 2; i++ {
		resp = f.do(t, http.MethodPost, path, nil, f.alice)
		testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	}
	resp = f.do(t, http.MethodPost, path, nil, f.bob)
	var state struct {
		Data api.LikeState `json:"data"`
	}
	testhelpers.ParseJSON(t, resp, &state)
	assert.True(t, state.Data.Liked)
	assert.Equal(t, int64(2), state.Data.Likes)

	resp = f.do(t, http.MethodDelete, path, nil, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusOK)
	testhelpers.ParseJSON(t, resp, &state)
	assert.False(t, state.Data.Liked)
	assert.Equal(t, int64(1), state.Data.Likes)

	resp = f.do(t, http.MethodPost, "/api/properties/missing/like", nil, f.alice)
	testhelpers.AssertStatus(t, resp, fiber.StatusNotFound)
}
