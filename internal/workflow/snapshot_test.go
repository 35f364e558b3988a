package workflow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func roundTrip(t *testing.T, doc Document) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestBuildSnapshot_EmptyProfileIsFullyPopulated(t *testing.T) {
	applicant := &models.SessionUser{ID: "u1", Email: "tenant@example.com", Role: models.RoleTenant}
	app := &models.Application{
		ID:              "a1",
		UserID:          "u1",
		PropertyID:      "p1",
		ApplicationType: models.ApplicationIndividual,
		Status:          models.StatusSubmitted,
		TotalRent:       decimal.RequireFromString("1250.00"),
		OccupancyType:   models.OccupancySingle,
	}

	for _, profile := range []*models.UserApplicationProfile{nil, {UserID: "u1"}} {
		doc, err := BuildSnapshot(applicant, profile, app)
		require.NoError(t, err)

		out := roundTrip(t, doc)

		finance, ok := out["finance"].(map[string]interface{})
		require.True(t, ok)
		for _, key := range []string{"employmentStatus", "employer", "jobTitle", "annualIncome", "hasGuarantor"} {
			v, present := finance[key]
			assert.True(t, present, key)
			assert.Nil(t, v, key)
		}

		rental, ok := out["rental"].(map[string]interface{})
		require.True(t, ok)
		for _, key := range []string{"currentAddress", "currentRent", "yearsAtAddress", "reasonForMoving", "hasPets", "isSmoker", "occupants"} {
			v, present := rental[key]
			assert.True(t, present, key)
			assert.Nil(t, v, key)
		}

		documents, ok := out["documents"].(map[string]interface{})
		require.True(t, ok, "documents must be an object")
		assert.Empty(t, documents)

		lease := out["lease"].(map[string]interface{})
		assert.Equal(t, map[string]interface{}{}, lease["inclusions"])
		assert.Nil(t, lease["proposedRent"])
		assert.Nil(t, lease["unitId"])
		assert.Equal(t, float64(0), lease["rentalDuration"])
	}
}

func TestBuildSnapshot_StampsGenerationTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	freezeClock(t, at)

	submitted := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	app := &models.Application{ID: "a1", UserID: "u1", SubmittedAt: &submitted}

	doc, err := BuildSnapshot(&models.SessionUser{ID: "u1"}, nil, app)
	require.NoError(t, err)
	assert.Equal(t, at, doc.SubmittedAt)
}

func TestBuildSnapshot_CopiesInputs(t *testing.T) {
	name := "Ada"
	employer := "Analytical Engines Ltd"
	income := decimal.NewNullDecimal(decimal.RequireFromString("52000"))
	inclusions, err := models.NewJSON(map[string]interface{}{"parking": true, "cleaning": "weekly"})
	require.NoError(t, err)
	documents, err := models.NewJSON(map[string]models.DocumentRef{
		"payslip": {Key: "users/u1/payslip/x.pdf", Filename: "x.pdf", ContentType: "application/pdf"},
	})
	require.NoError(t, err)

	applicant := &models.SessionUser{ID: "u1", Email: "ada@example.com", Name: &name, Role: models.RoleTenant}
	profile := &models.UserApplicationProfile{UserID: "u1", Employer: &employer, AnnualIncome: income, Documents: documents}
	app := &models.Application{ID: "a1", UserID: "u1", PropertyID: "p1", Inclusions: inclusions}

	doc, err := BuildSnapshot(applicant, profile, app)
	require.NoError(t, err)

	name = "changed"
	employer = "changed"

	assert.Equal(t, "Ada", *doc.Profile.Name)
	assert.Equal(t, "Analytical Engines Ltd", *doc.Finance.Employer)
	assert.True(t, doc.Finance.AnnualIncome.Valid)
	assert.Equal(t, true, doc.Lease.Inclusions["parking"])
	assert.Equal(t, "weekly", doc.Lease.Inclusions["cleaning"])
	assert.Equal(t, "users/u1/payslip/x.pdf", doc.Documents["payslip"].Key)
}

func TestBuildSnapshot_RequiresInputs(t *testing.T) {
	_, err := BuildSnapshot(nil, nil, &models.Application{})
	assert.Error(t, err)
	_, err = BuildSnapshot(&models.SessionUser{}, nil, nil)
	assert.Error(t, err)
}
