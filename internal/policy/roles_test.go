package policy

import (
	"testing"

	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/stretchr/testify/assert"
)

func user(role models.Role) *models.SessionUser {
	return &models.SessionUser{ID: "u-" + string(role), Email: string(role) + "@example.com", Role: role}
}

func TestLevelOrder(t *testing.T) {
	assert.Equal(t, 1, Level(models.RoleTenant))
	assert.Equal(t, 2, Level(models.RoleLandlord))
	assert.Equal(t, 3, Level(models.RoleAdmin))
	assert.Equal(t, 4, Level(models.RoleSuperAdmin))
	assert.Equal(t, 0, Level(models.Role("owner")))
}

func TestHasRoleLevel_AllPairs(t *testing.T) {
	for _, have := range models.Roles {
		for _, min := range models.Roles {
			want := Level(have) >= Level(min)
			assert.Equalf(t, want, HasRoleLevel(user(have), min), "%s >= %s", have, min)
		}
	}
}

func TestNilUserIsDenied(t *testing.T) {
	for _, r := range models.Roles {
		assert.False(t, HasRoleLevel(nil, r))
		assert.False(t, HasRole(nil, r))
	}
	assert.False(t, HasAnyRole(nil, models.Roles...))
	assert.False(t, CanManageProperties(nil))
	assert.False(t, CanManageUsers(nil))
	assert.False(t, CanApproveApplications(nil))
	assert.False(t, CanGrant(nil, models.RoleTenant))
}

func TestDerivedPredicates(t *testing.T) {
	assert.False(t, CanManageProperties(user(models.RoleTenant)))
	assert.True(t, CanManageProperties(user(models.RoleLandlord)))
	assert.False(t, CanManageUsers(user(models.RoleLandlord)))
	assert.True(t, CanManageUsers(user(models.RoleAdmin)))
	assert.True(t, CanApproveApplications(user(models.RoleLandlord)))
	assert.False(t, CanUpdateApplicationStatus(user(models.RoleLandlord)))
	assert.True(t, CanUpdateApplicationStatus(user(models.RoleSuperAdmin)))
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, HasAnyRole(user(models.RoleAdmin), models.RoleLandlord, models.RoleAdmin))
	assert.False(t, HasAnyRole(user(models.RoleTenant), models.RoleLandlord, models.RoleAdmin))
	assert.False(t, HasAnyRole(user(models.RoleTenant)))
}

func TestCanGrant(t *testing.T) {
	admin := user(models.RoleAdmin)
	assert.True(t, CanGrant(admin, models.RoleLandlord))
	assert.True(t, CanGrant(admin, models.RoleAdmin))
	assert.False(t, CanGrant(admin, models.RoleSuperAdmin))
	assert.True(t, CanGrant(user(models.RoleSuperAdmin), models.RoleSuperAdmin))
	assert.False(t, CanGrant(user(models.RoleLandlord), models.RoleTenant))
	assert.False(t, CanGrant(admin, models.Role("root")))
}

type owned string

func (o owned) GetUserID() string { return string(o) }

func TestOwnership(t *testing.T) {
	tenant := user(models.RoleTenant)
	assert.True(t, IsOwner(tenant, owned(tenant.ID)))
	assert.False(t, IsOwner(tenant, owned("someone-else")))
	assert.False(t, IsOwner(nil, owned(tenant.ID)))

	landlord := user(models.RoleLandlord)
	assert.True(t, CanViewApplication(tenant, owned(tenant.ID), ""))
	assert.True(t, CanViewApplication(landlord, owned("someone-else"), landlord.ID))
	assert.False(t, CanViewApplication(landlord, owned("someone-else"), "other-landlord"))
	assert.False(t, CanViewApplication(landlord, owned("someone-else"), ""))
	assert.True(t, CanViewApplication(user(models.RoleAdmin), owned("someone-else"), ""))
	assert.False(t, CanViewApplication(tenant, owned("someone-else"), tenant.ID))
	assert.False(t, CanViewApplication(nil, owned("someone-else"), ""))

	assert.True(t, CanEditProperty(landlord, owned(landlord.ID)))
	assert.False(t, CanEditProperty(landlord, owned("other-landlord")))
	assert.True(t, CanEditProperty(user(models.RoleAdmin), owned("other-landlord")))
	assert.False(t, CanEditProperty(tenant, owned(tenant.ID)))
}
