package routes

import (
	"expensio/internal/adapters/http/handlers"
	"expensio/internal/adapters/http/middleware"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/config"
	"expensio/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionRepo, cfg)
	clientService := services.NewClientService(clientRepo)
	transactionService := services.NewTransactionService(transactionRepo, clientRepo)
	invoiceService := services.NewInvoiceService(invoiceRepo, clientRepo)
	exportService := services.NewExportService(transactionRepo, attachmentRepo, services.NewHTTPBlobFetcher())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	clientHandler := handlers.NewClientHandler(clientService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, exportService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	authGuard := middleware.AuthMiddleware(authService)

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, authGuard)

	// Client routes (authenticated)
	clientRoutes := apiV1.Group("/clients")
	clientRoutes.Use(authGuard)
	setupClientRoutes(clientRoutes, clientHandler)

	// Transaction routes (authenticated)
	transactionRoutes := apiV1.Group("/transactions")
	transactionRoutes.Use(authGuard)
	setupTransactionRoutes(transactionRoutes, transactionHandler)

	// Invoice routes (authenticated)
	invoiceRoutes := apiV1.Group("/invoices")
	invoiceRoutes.Use(authGuard)
	setupInvoiceRoutes(invoiceRoutes, invoiceHandler)
}

// setupAuthRoutes configures authentication routes.
// Register and login are rate limited against brute force.
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, authGuard fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", authGuard, handler.Me)
}

// setupClientRoutes configures client routes
func setupClientRoutes(router fiber.Router, handler *handlers.ClientHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

// setupTransactionRoutes configures transaction routes
func setupTransactionRoutes(router fiber.Router, handler *handlers.TransactionHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)

	// Exports run over the full filter set and must never be cached
	router.Get("/export/csv", middleware.NoCache(), handler.ExportCSV)
	router.Get("/export/xlsx", middleware.NoCache(), handler.ExportXLSX)

	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Get("/:id/attachments/download", middleware.NoCache(), handler.DownloadAttachments)
}

// setupInvoiceRoutes configures invoice routes
func setupInvoiceRoutes(router fiber.Router, handler *handlers.InvoiceHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/status", handler.UpdateStatus)
	router.Delete("/:id", handler.Delete)
}
