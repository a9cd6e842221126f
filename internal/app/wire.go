package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ournewbridge/directory/internal/access"
	"github.com/ournewbridge/directory/internal/auth"
	"github.com/ournewbridge/directory/internal/directory"
	"github.com/ournewbridge/directory/internal/guard"
	"github.com/ournewbridge/directory/internal/handler"
	adminhandler "github.com/ournewbridge/directory/internal/handler/admin"
	"github.com/ournewbridge/directory/internal/infra"
	"github.com/ournewbridge/directory/internal/repository"
	"github.com/ournewbridge/directory/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter. Pool is nil in file
// mode; database-backed features then degrade per endpoint.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	Store  directory.Store
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	SuperAdminEmails   string
	AdminPassword      string
	AdminPasswordHash  string
	CORSAllowedOrigins string

	ReportLimiter  *guard.FixedWindowLimiter
	ReportProducer *infra.KafkaProducer
	ReportTopic    string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger

	// A nil *pgxpool.Pool must stay a nil DBTX so the services can detect
	// file mode.
	var db repository.DBTX
	if deps.Pool != nil {
		db = deps.Pool
	}

	// Repositories
	assignmentRepo := repository.NewPgAssignmentRepository()
	updateRepo := repository.NewPgUpdateRequestRepository()
	accountRepo := repository.NewPgAccountRepository()

	resolver := access.NewResolver(deps.SuperAdminEmails, db, assignmentRepo)

	// Services
	sessionSvc := service.NewSessionService(db, accountRepo, deps.JWTMgr, deps.AdminPassword, deps.AdminPasswordHash, logger)
	citySvc := service.NewCityService(deps.Store, logger)
	updateSvc := service.NewUpdateService(db, updateRepo, deps.Store, logger)
	permissionSvc := service.NewPermissionService(db, assignmentRepo, accountRepo, deps.Store, logger)
	reportSvc := service.NewReportService(deps.ReportLimiter, deps.ReportProducer, deps.ReportTopic, logger)

	// Handlers
	healthHandler := handler.NewHealthHandler(deps.Pool, deps.Store.Mode())
	sessionHandler := handler.NewSessionHandler(sessionSvc, resolver)
	publicHandler := handler.NewPublicHandler(citySvc)
	updateHandler := handler.NewUpdateHandler(updateSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	updatesAdmin := adminhandler.NewUpdatesHandler(updateSvc, resolver)
	permissionsAdmin := adminhandler.NewPermissionsHandler(permissionSvc, resolver)
	citiesAdmin := adminhandler.NewCitiesHandler(citySvc, resolver)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", healthHandler.Health)

	// Session routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", sessionHandler.Register)
		r.Post("/login", sessionHandler.Login)
		r.Post("/admin-login", sessionHandler.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(deps.JWTMgr))
			r.Get("/me", sessionHandler.Me)
		})
	})

	// Public directory reads (no auth)
	r.Route("/cities", func(r chi.Router) {
		r.Get("/", publicHandler.ListCities)
		r.Get("/{slug}", publicHandler.GetCity)
		r.Get("/{slug}/resources", publicHandler.ListResources)
	})

	// Issue reports: anonymous allowed, principal attached when present.
	r.Group(func(r chi.Router) {
		r.Use(auth.MaybeAuthenticate(deps.JWTMgr))
		r.Post("/reports", reportHandler.Submit)
	})

	// Contributor updates (auth required)
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(deps.JWTMgr))
		r.Post("/updates", updateHandler.Submit)
	})

	// Admin routes. Authentication happens here; authorization (resolved
	// access, per-row scoping) happens in the services.
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate(deps.JWTMgr))

		r.Route("/updates", func(r chi.Router) {
			r.Get("/", updatesAdmin.ListPending)
			r.Post("/{id}/resolve", updatesAdmin.Resolve)
		})

		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", permissionsAdmin.Overview)
			r.Post("/", permissionsAdmin.Create)
			r.Delete("/{id}", permissionsAdmin.Delete)
		})

		r.Route("/cities", func(r chi.Router) {
			r.Post("/", citiesAdmin.CreateCity)
			r.Get("/validate", citiesAdmin.Validate)
			r.Put("/{slug}/resources/{category}", citiesAdmin.UpsertResource)
			r.Put("/{slug}/resources/{category}/{id}", citiesAdmin.UpsertResource)
			r.Delete("/{slug}/resources/{category}/{id}", citiesAdmin.DeleteResource)
		})

		r.Get("/export", citiesAdmin.Export)
	})

	return r
}
