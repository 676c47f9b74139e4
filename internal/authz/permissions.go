// Package authz resolves organization-scoped permissions for members.
package authz

// Permission identifies a single organization-scoped capability.
type Permission string

// Screenshot permissions consumed by the screenshot resource.
const (
	PermScreenshotsViewAll   Permission = "screenshots:view:all"
	PermScreenshotsViewOwn   Permission = "screenshots:view:own"
	PermScreenshotsUpload    Permission = "screenshots:upload"
	PermScreenshotsDeleteAll Permission = "screenshots:delete:all"
	PermScreenshotsDeleteOwn Permission = "screenshots:delete:own"
)

// PermissionSet is the resolved capability set of a member within one organization.
type PermissionSet map[Permission]struct{}

// Has reports whether the set includes the provided permission.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// NewPermissionSet builds a set from individual permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	out := make(PermissionSet, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}
