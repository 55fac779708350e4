package app

import (
	"amani-backend/internal/auth"
	"amani-backend/internal/categories"
	"amani-backend/internal/config"
	"amani-backend/internal/constants"
	"amani-backend/internal/countries"
	"amani-backend/internal/database"
	"amani-backend/internal/health"
	"amani-backend/internal/impacts"
	"amani-backend/internal/middleware"
	"amani-backend/internal/pillars"
	"amani-backend/internal/projects"
	"amani-backend/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	// Session (Redis); the Redis client also serves the health marker
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	// Health request marker (after session)
	app.Use(middleware.HealthMarker(rdb))

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	// --- Health routes (no auth) ---
	var pinger health.DBPinger
	if db != nil {
		pinger = gormPinger{db}
	}
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             pinger,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", healthHandlers.Dashboard)
	app.Get("/reset", healthHandlers.Reset)
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)

	// --- Auth routes (no auth middleware) ---
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil {
		RegisterRoutes(app, db, cfg)
	}

	return app, db, rdb, nil
}

// RegisterRoutes mounts the content modules on /api/v1. Split out of CreateApp
// so tests can mount routes on an in-memory DB without config/Redis.
func RegisterRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	var storage uploads.Storage
	if cfg != nil && cfg.SupabaseURL != "" {
		storage = &uploads.SupabaseStorage{
			BaseURL:   cfg.SupabaseURL,
			SecretKey: cfg.SupabaseSecretKey,
			Bucket:    cfg.StorageBucket,
		}
	}

	impactService := &impacts.Service{DB: db}
	pillarService := &pillars.Service{DB: db}
	categoryService := &categories.Service{DB: db}
	countryService := &countries.Service{DB: db}
	projectService := &projects.Service{
		DB:      db,
		Ledger:  impactService,
		Catalog: pillarService,
		Storage: storage,
	}

	impactHandlers := &impacts.Handlers{Service: impactService}
	impactGroup := app.Group("/api/v1/impacts", middleware.RequireAuth())
	impactGroup.Get("/", middleware.AuthorizePermission(constants.ViewDashboard), impactHandlers.List)
	impactGroup.Get("/stats", middleware.AuthorizePermission(constants.ViewDashboard), impactHandlers.GetStats)
	impactGroup.Post("/", middleware.AuthorizePermission(constants.ManageImpacts), impactHandlers.Create)
	impactGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageImpacts), impactHandlers.Update)
	impactGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageImpacts), impactHandlers.Delete)
	impactGroup.Post("/recalculate", middleware.AuthorizePermission(constants.RecalcImpacts), impactHandlers.Recalculate)

	projectHandlers := &projects.Handlers{Service: projectService}
	projectGroup := app.Group("/api/v1/projects", middleware.RequireAuth())
	projectGroup.Get("/", middleware.AuthorizePermission(constants.ViewDashboard), projectHandlers.List)
	projectGroup.Get("/:id", middleware.AuthorizePermission(constants.ViewDashboard), projectHandlers.GetByID)
	projectGroup.Get("/:id/impacts", middleware.AuthorizePermission(constants.ViewDashboard), projectHandlers.GetImpacts)
	projectGroup.Post("/", middleware.AuthorizePermission(constants.ManageProjects), projectHandlers.Create)
	projectGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageProjects), projectHandlers.Update)
	projectGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageProjects), projectHandlers.Delete)
	projectGroup.Patch("/:id/featured", middleware.AuthorizePermission(constants.ManageProjects), projectHandlers.SetFeatured)
	projectGroup.Patch("/:id/hidden", middleware.AuthorizePermission(constants.ManageProjects), projectHandlers.SetHidden)

	pillarHandlers := &pillars.Handlers{Service: pillarService}
	pillarGroup := app.Group("/api/v1/pillars", middleware.RequireAuth())
	pillarGroup.Get("/", middleware.AuthorizePermission(constants.ViewDashboard), pillarHandlers.List)
	pillarGroup.Get("/:id/categories", middleware.AuthorizePermission(constants.ViewDashboard), pillarHandlers.ListFocusAreas)
	pillarGroup.Post("/", middleware.AuthorizePermission(constants.ManageCatalog), pillarHandlers.Create)
	pillarGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageCatalog), pillarHandlers.Update)
	pillarGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageCatalog), pillarHandlers.Delete)

	categoryHandlers := &categories.Handlers{Service: categoryService}
	categoryGroup := app.Group("/api/v1/categories", middleware.RequireAuth())
	categoryGroup.Get("/", middleware.AuthorizePermission(constants.ViewDashboard), categoryHandlers.List)
	categoryGroup.Post("/", middleware.AuthorizePermission(constants.ManageCatalog), categoryHandlers.Create)
	categoryGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageCatalog), categoryHandlers.Update)
	categoryGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageCatalog), categoryHandlers.Delete)

	countryHandlers := &countries.Handlers{Service: countryService}
	countryGroup := app.Group("/api/v1/countries", middleware.RequireAuth())
	countryGroup.Get("/", middleware.AuthorizePermission(constants.ViewDashboard), countryHandlers.List)
	countryGroup.Post("/", middleware.AuthorizePermission(constants.ManageCountries), countryHandlers.Create)
	countryGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageCountries), countryHandlers.Update)
	countryGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageCountries), countryHandlers.Delete)
}

type gormPinger struct {
	db *gorm.DB
}

func (p gormPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
