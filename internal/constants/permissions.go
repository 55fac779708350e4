package constants

const (
	ViewDashboard    = "view_dashboard"
	ManageProjects   = "manage_projects"
	ManageImpacts    = "manage_impacts"
	RecalcImpacts    = "recalc_impacts"
	ManageCatalog    = "manage_catalog"
	ManageCountries  = "manage_countries"
)
