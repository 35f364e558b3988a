package policy

import "github.com/localnerve/jam-build-rentals/internal/models"

// Ownable is implemented by records that belong to one user.
type Ownable interface {
	GetUserID() string
}

// IsOwner reports whether user owns resource
func IsOwner(user *models.SessionUser, resource Ownable) bool {
	if user == nil || resource == nil {
		return false
	}
	return resource.GetUserID() == user.ID
}

// CanViewApplication allows the applicant, admins, and the landlord who owns the
// property applied for. propertyOwnerID is empty when unknown.
func CanViewApplication(user *models.SessionUser, app Ownable, propertyOwnerID string) bool {
	if IsOwner(user, app) || CanManageUsers(user) {
		return true
	}
	return CanApproveApplications(user) && propertyOwnerID != "" && propertyOwnerID == user.ID
}

// CanEditProperty allows the owning landlord or an admin
func CanEditProperty(user *models.SessionUser, property Ownable) bool {
	if !CanManageProperties(user) {
		return false
	}
	return IsOwner(user, property) || CanManageUsers(user)
}
