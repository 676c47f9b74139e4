package authz

// Role is the organization-level role assigned to a member.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleEmployee    Role = "employee"
	RolePlaceholder Role = "placeholder"
)

// Placeholder members represent imported historical data and hold no permissions.
var rolePermissions = map[Role]PermissionSet{
	RoleOwner: NewPermissionSet(
		PermScreenshotsViewAll,
		PermScreenshotsViewOwn,
		PermScreenshotsUpload,
		PermScreenshotsDeleteAll,
		PermScreenshotsDeleteOwn,
	),
	RoleAdmin: NewPermissionSet(
		PermScreenshotsViewAll,
		PermScreenshotsViewOwn,
		PermScreenshotsUpload,
		PermScreenshotsDeleteAll,
		PermScreenshotsDeleteOwn,
	),
	RoleManager: NewPermissionSet(
		PermScreenshotsViewAll,
		PermScreenshotsViewOwn,
	),
	RoleEmployee: NewPermissionSet(
		PermScreenshotsViewOwn,
		PermScreenshotsUpload,
		PermScreenshotsDeleteOwn,
	),
	RolePlaceholder: NewPermissionSet(),
}

// PermissionsForRole returns the capability set granted by a role.
// Unknown roles resolve to an empty set.
func PermissionsForRole(r Role) PermissionSet {
	if perms, ok := rolePermissions[r]; ok {
		return perms
	}
	return PermissionSet{}
}
