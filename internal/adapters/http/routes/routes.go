package routes

import (
	"time"

	"loyalwallet/internal/adapters/http/handlers"
	"loyalwallet/internal/adapters/http/middleware"
	"loyalwallet/internal/adapters/persistence/repositories"
	"loyalwallet/internal/config"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/serial"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Deps are the collaborators built outside the HTTP layer
type Deps struct {
	Wallet    services.WalletProvider
	Pins      services.PinProvider
	Presenter *cards.Presenter
	Serials   *serial.Generator
	// Notifier is nudged after card outbox writes; usually the outbox dispatcher
	Notifier services.Notifier
}

// Services exposes the services the scheduler needs
type Services struct {
	Auth       *services.AuthService
	Activation *services.ActivationService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) *Services {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	employeeRepo := repositories.NewEmployeeRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	scanRepo := repositories.NewScanRepository(db)

	// Initialize services
	authService := services.NewAuthService(db, accountRepo, refreshTokenRepo, cfg)
	companyService := services.NewCompanyService(companyRepo, deps.Presenter, deps.Wallet)
	locationService := services.NewLocationService(locationRepo, companyRepo)
	employeeService := services.NewEmployeeService(employeeRepo, locationRepo)
	customerService := services.NewCustomerService(customerRepo)
	activationService := services.NewActivationService(db, deps.Pins, deps.Presenter, deps.Serials, deps.Notifier)
	ledgerService := services.NewLedgerService(db, deps.Presenter, deps.Notifier)
	reportService := services.NewReportService(scanRepo, customerRepo, employeeRepo, locationRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	companyHandler := handlers.NewCompanyHandler(companyService)
	locationHandler := handlers.NewLocationHandler(locationService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	customerHandler := handlers.NewCustomerHandler(customerService, activationService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Card holder self sign up (public, before the authenticated company group)
	clientRoutes := apiV1.Group("/companies/:companyId/clients", middleware.NoCacheHeaders())
	setupClientRoutes(clientRoutes, customerHandler)

	// Company routes (authenticated)
	companyRoutes := apiV1.Group("/companies", middleware.AuthMiddleware(cfg))
	setupCompanyRoutes(companyRoutes, companyHandler)

	// Everything below acts inside one company
	scoped := companyRoutes.Group("/:companyId", middleware.UserOrAdmin(), middleware.CompanyScope("companyId"))
	scoped.Get("/", companyHandler.Get)
	scoped.Put("/", companyHandler.Update)
	scoped.Put("/card-template", companyHandler.UpdateCardTemplate)
	setupLocationRoutes(scoped.Group("/locations"), locationHandler)
	setupEmployeeRoutes(scoped.Group("/employees"), employeeHandler, reportHandler)
	setupCustomerRoutes(scoped, customerHandler)
	setupLedgerRoutes(scoped, ledgerHandler)
	setupReportRoutes(scoped.Group("/reports"), reportHandler)

	return &Services{
		Auth:       authService,
		Activation: activationService,
	}
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/confirm-email", middleware.AuthRateLimiter(), handler.ConfirmEmail)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
	router.Put("/password", middleware.AuthMiddleware(cfg), handler.ChangePassword)
}

// setupCompanyRoutes configures the cross-company routes (Admin only)
func setupCompanyRoutes(router fiber.Router, handler *handlers.CompanyHandler) {
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/by-name/:name", middleware.AdminOnly(), handler.GetByName)
	router.Delete("/:companyId", middleware.AdminOnly(), handler.Delete)
}

// setupLocationRoutes configures company location routes
func setupLocationRoutes(router fiber.Router, handler *handlers.LocationHandler) {
	router.Get("/", middleware.PrivateCacheHeaders(time.Minute), handler.List)
	router.Get("/by-address", handler.GetByAddress)
	router.Get("/by-name/:name", handler.GetByName)
	router.Patch("/by-name/:name/archive", handler.SetArchived)
	router.Post("/", handler.Create)
	router.Delete("/:id", handler.Delete)
}

// setupEmployeeRoutes configures company employee routes and their reports
func setupEmployeeRoutes(router fiber.Router, handler *handlers.EmployeeHandler, reports *handlers.ReportHandler) {
	router.Get("/", middleware.PrivateCacheHeaders(time.Minute), handler.List)
	router.Get("/by-name", handler.GetByName)
	router.Get("/:id", handler.Get)
	router.Post("/", handler.Create)
	router.Patch("/:id/archive", handler.SetArchived)
	router.Delete("/:id", handler.Delete)

	router.Get("/:id/stamps", reports.EmployeeStamps)
	router.Get("/:id/presents", reports.EmployeePresents)
}

// setupCustomerRoutes configures card holder lookups for the company owner
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	router.Get("/customers", handler.List)
	router.Get("/customers/by-phone/:phone", handler.GetByPhone)
}

// setupClientRoutes configures phone sign up, done by card holders from their own phone
func setupClientRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	router.Post("/register", middleware.StrictRateLimiter(), handler.RegisterClient)
	router.Post("/confirm", middleware.AuthRateLimiter(), handler.ConfirmClient)
}

// setupLedgerRoutes configures stamping and redemption routes
func setupLedgerRoutes(router fiber.Router, handler *handlers.LedgerHandler) {
	router.Post("/cards/check/:employeeId", middleware.NoCacheHeaders(), handler.ScanCard)
	router.Post("/presents", middleware.NoCacheHeaders(), handler.TakePresent)
	router.Post("/pushmessage", handler.PushMessage)
	router.Post("/cards/:serial/push", handler.RefreshCard)
}

// setupReportRoutes configures company statistics routes
func setupReportRoutes(router fiber.Router, handler *handlers.ReportHandler) {
	router.Get("/summary", handler.Summary)
	router.Get("/cards", handler.AllCards)
	router.Get("/stamps", handler.AllStamps)
	router.Get("/presents", handler.AllPresents)
	router.Get("/scans", handler.Scans)
}
