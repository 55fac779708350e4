package constants

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewDashboard:   {Viewer, Editor, Admin, Superadmin},
	ManageProjects:  {Editor, Admin, Superadmin},
	ManageImpacts:   {Admin, Superadmin},
	RecalcImpacts:   {Admin, Superadmin},
	ManageCatalog:   {Admin, Superadmin},
	ManageCountries: {Admin, Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
