package workflow

import (
	"errors"
	"testing"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSubmit(t *testing.T) {
	err := CheckSubmit(models.StatusSubmitted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConflict))
	assert.Equal(t, "Application already submitted", err.(*types.CustomError).Message)

	for _, st := range []models.Status{models.StatusDraft, models.StatusWithdrawn, models.StatusUnderReview} {
		assert.NoError(t, CheckSubmit(st), st)
	}
}

func TestCheckWithdraw(t *testing.T) {
	allowed := map[models.Status]bool{
		models.StatusSubmitted:   true,
		models.StatusUnderReview: true,
	}

	for _, st := range models.Statuses {
		err := CheckWithdraw(st)
		if allowed[st] {
			assert.NoError(t, err, st)
			continue
		}
		require.Error(t, err, st)
		assert.True(t, errors.Is(err, types.ErrInvalidTransition), st)
		assert.Equal(t, 400, types.StatusOf(err))
	}
}

func TestParseAdminStatus(t *testing.T) {
	for _, st := range models.Statuses {
		got, err := ParseAdminStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	for _, bad := range []string{"", "  ", "archived", "SUBMITTED", "pending"} {
		_, err := ParseAdminStatus(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, types.ErrInvalidInput), bad)
	}
}

func TestAuthorizeOwner(t *testing.T) {
	app := &models.Application{ID: "a1", UserID: "owner"}

	err := AuthorizeOwner(nil, app)
	assert.True(t, errors.Is(err, types.ErrUnauthorized))

	err = AuthorizeOwner(&models.SessionUser{ID: "intruder", Role: models.RoleSuperAdmin}, app)
	assert.True(t, errors.Is(err, types.ErrForbidden), "admins do not bypass the owner path")

	assert.NoError(t, AuthorizeOwner(&models.SessionUser{ID: "owner", Role: models.RoleTenant}, app))
}

func TestAuthorizeStatusUpdate(t *testing.T) {
	assert.True(t, errors.Is(AuthorizeStatusUpdate(nil), types.ErrUnauthorized))
	assert.True(t, errors.Is(AuthorizeStatusUpdate(&models.SessionUser{Role: models.RoleLandlord}), types.ErrForbidden))
	assert.NoError(t, AuthorizeStatusUpdate(&models.SessionUser{Role: models.RoleAdmin}))
	assert.NoError(t, AuthorizeStatusUpdate(&models.SessionUser{Role: models.RoleSuperAdmin}))
}
