package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError(t *testing.T) {
	log := logging.Discard()

	notFound := types.NotFound("Application not found")
	assert.Same(t, notFound, storeError(log, "ignored", fmt.Errorf("wrapped: %w", notFound)))

	fk := storeError(log, "ignored", &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	assert.ErrorIs(t, fk, types.ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(fk))

	cause := errors.New("disk full")
	internal := storeError(log, "Failed to save", cause)
	assert.ErrorIs(t, internal, types.ErrInternal)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, http.StatusInternalServerError, types.StatusOf(internal))
}

func TestStoreFailuresAreInternal(t *testing.T) {
	ctx := context.Background()
	actor := &models.SessionUser{ID: "alice", Role: models.RoleTenant}

	t.Run("list applications", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM "applications"`).WillReturnError(errors.New("connection reset"))

		_, err := NewApplicationService(db, logging.Discard()).ListForUser(ctx, actor)
		assert.ErrorIs(t, err, types.ErrInternal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list properties", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM "properties"`).WillReturnError(errors.New("connection reset"))

		_, err := NewPropertyService(db, logging.Discard()).List(ctx, api.PropertyFilter{})
		assert.ErrorIs(t, err, types.ErrInternal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("submit rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM "applications"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := NewApplicationService(db, logging.Discard()).Submit(ctx, actor, "4b0c7c1e-5f0e-4a8e-9f59-5f4f1b0b6c11")
		assert.ErrorIs(t, err, types.ErrInternal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not a failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM "properties"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewPropertyService(db, logging.Discard()).Get(ctx, actor, "missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func rawBody(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestProfilePatchRejectsBadValues(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, logging.Discard())
	actor := &models.SessionUser{ID: "alice", Email: "alice@example.com"}

	for _, body := range []string{
		`{"occupants": -1}`,
		`{"annualIncome": "-5"}`,
		`{"yearsAtAddress": "three"}`,
		`{"hasGuarantor": "yes"}`,
	} {
		_, err := svc.Patch(context.Background(), actor, rawBody(t, body))
		assert.ErrorIs(t, err, types.ErrInvalidInput, body)
	}

	doc, err := svc.Patch(context.Background(), actor, rawBody(t, `{"occupants": 2, "annualIncome": 36000, "unknown": true}`))
	require.NoError(t, err)
	require.NotNil(t, doc.ApplicationProfile)
	require.NotNil(t, doc.ApplicationProfile.Occupants)
	assert.Equal(t, 2, *doc.ApplicationProfile.Occupants)
	assert.True(t, doc.ApplicationProfile.AnnualIncome.Valid)
	assert.Equal(t, "36000", doc.ApplicationProfile.AnnualIncome.Decimal.String())

	_, err = svc.Patch(context.Background(), nil, rawBody(t, `{}`))
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}
