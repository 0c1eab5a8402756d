package utils

// Permission levels
const (
	AdminPermission  = "admin"
	ExemptPermission = "exempt"
	UserPermission   = "user"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether any of the member's roles is in roleIDs.
func HasAnyRole(memberRoleIDs, roleIDs []string) bool {
	for _, id := range memberRoleIDs {
		if contains(roleIDs, id) {
			return true
		}
	}
	return false
}

// CheckPermission returns the highest permission level the member's roles grant.
// Admins are implicitly exempt from automod.
func CheckPermission(memberRoleIDs, adminRoleIDs, exemptRoleIDs []string) string {
	if HasAnyRole(memberRoleIDs, adminRoleIDs) {
		return AdminPermission
	}
	if HasAnyRole(memberRoleIDs, exemptRoleIDs) {
		return ExemptPermission
	}
	return UserPermission
}
