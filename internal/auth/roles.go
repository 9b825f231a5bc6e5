package auth

// UserRole is the account's global role.
type UserRole = string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser UserRole = "user"
	// RoleAdmin grants access to the admin endpoints.
	RoleAdmin UserRole = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}
