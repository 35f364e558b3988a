package models

// Role is the single role an identity holds.
type Role string

const (
	RoleTenant     Role = "tenant"
	RoleLandlord   Role = "landlord"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every role from lowest to highest.
var Roles = []Role{RoleTenant, RoleLandlord, RoleAdmin, RoleSuperAdmin}

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// SessionUser is the identity resolved for a single request.
type SessionUser struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
	Phone *string `json:"phone"`
	Role  Role    `json:"role"`
}
