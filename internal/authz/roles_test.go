package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionsForRole(t *testing.T) {
	cases := []struct {
		role    Role
		granted []Permission
		denied  []Permission
	}{
		{
			role: RoleOwner,
			granted: []Permission{
				PermScreenshotsViewAll, PermScreenshotsViewOwn,
				PermScreenshotsUpload, PermScreenshotsDeleteAll, PermScreenshotsDeleteOwn,
			},
		},
		{
			role: RoleAdmin,
			granted: []Permission{
				PermScreenshotsViewAll, PermScreenshotsViewOwn,
				PermScreenshotsUpload, PermScreenshotsDeleteAll, PermScreenshotsDeleteOwn,
			},
		},
		{
			role:    RoleManager,
			granted: []Permission{PermScreenshotsViewAll, PermScreenshotsViewOwn},
			denied:  []Permission{PermScreenshotsUpload, PermScreenshotsDeleteAll, PermScreenshotsDeleteOwn},
		},
		{
			role:    RoleEmployee,
			granted: []Permission{PermScreenshotsViewOwn, PermScreenshotsUpload, PermScreenshotsDeleteOwn},
			denied:  []Permission{PermScreenshotsViewAll, PermScreenshotsDeleteAll},
		},
		{
			role: RolePlaceholder,
			denied: []Permission{
				PermScreenshotsViewAll, PermScreenshotsViewOwn,
				PermScreenshotsUpload, PermScreenshotsDeleteAll, PermScreenshotsDeleteOwn,
			},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			perms := PermissionsForRole(tc.role)
			for _, p := range tc.granted {
				require.True(t, perms.Has(p), "role %s should hold %s", tc.role, p)
			}
			for _, p := range tc.denied {
				require.False(t, perms.Has(p), "role %s should not hold %s", tc.role, p)
			}
		})
	}
}

func TestPermissionsForUnknownRoleIsEmpty(t *testing.T) {
	perms := PermissionsForRole(Role("auditor"))
	require.False(t, perms.Has(PermScreenshotsViewOwn))
	require.False(t, perms.Has(PermScreenshotsViewAll))
}

func TestPermissionSetHas(t *testing.T) {
	set := NewPermissionSet(PermScreenshotsUpload)
	require.True(t, set.Has(PermScreenshotsUpload))
	require.False(t, set.Has(PermScreenshotsDeleteAll))
}
