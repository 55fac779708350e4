package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole_ViewerCanOnlyView(t *testing.T) {
	assert.True(t, AllowedRole(ViewDashboard, Viewer))
	assert.False(t, AllowedRole(ManageProjects, Viewer))
	assert.False(t, AllowedRole(ManageImpacts, Viewer))
	assert.False(t, AllowedRole(RecalcImpacts, Viewer))
}

func TestAllowedRole_EditorManagesProjectsNotImpacts(t *testing.T) {
	assert.True(t, AllowedRole(ManageProjects, Editor))
	assert.False(t, AllowedRole(ManageImpacts, Editor))
	assert.False(t, AllowedRole(ManageCatalog, Editor))
}

func TestAllowedRole_AdminAndSuperadminFullAccess(t *testing.T) {
	for _, role := range []string{Admin, Superadmin} {
		for perm := range PermissionRoles {
			assert.True(t, AllowedRole(perm, role), "%s should hold %s", role, perm)
		}
	}
}

func TestAllowedRole_UnknownPermission(t *testing.T) {
	assert.False(t, AllowedRole("launch_rockets", Superadmin))
}
