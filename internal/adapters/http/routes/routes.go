package routes

import (
	"log"
	"time"

	"afps-backend/internal/adapters/gateway/mercadopago"
	"afps-backend/internal/adapters/http/handlers"
	"afps-backend/internal/adapters/http/middleware"
	"afps-backend/internal/adapters/persistence/repositories"
	"afps-backend/internal/config"
	"afps-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.SweepService {
	// Initialize repositories
	playerRepo := repositories.NewPlayerRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	configRepo := repositories.NewConfigRepository(db)
	financeRepo := repositories.NewFinanceRepository(db)
	matchRepo := repositories.NewMatchRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Payment gateway
	gateway, err := mercadopago.NewGateway(cfg.MercadoPago.AccessToken)
	if err != nil {
		log.Fatalf("❌ Failed to initialize payment gateway: %v", err)
	}

	// Initialize services
	authService := services.NewAuthService(playerRepo, refreshTokenRepo, auditRepo, cfg)
	playerService := services.NewPlayerService(playerRepo, auditRepo)
	financeService := services.NewFinanceService(playerRepo, financeRepo, configRepo)
	paymentService := services.NewPaymentService(playerRepo, financeRepo, configRepo, auditRepo, gateway, cfg)
	matchService := services.NewMatchService(matchRepo, playerRepo, financeService, auditRepo)
	adminService := services.NewAdminService(configRepo, expenseRepo, financeRepo, auditRepo)
	sweepService := services.NewSweepService(financeService, refreshTokenRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	playerHandler := handlers.NewPlayerHandler(playerService, matchService, paymentService)
	financeHandler := handlers.NewFinanceHandler(financeService, paymentService)
	webhookHandler := handlers.NewWebhookHandler(paymentService)
	matchHandler := handlers.NewMatchHandler(matchService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Webhooks (public; the reconciler re-fetches status, so a forged
	// body cannot settle anything)
	apiV1.Post("/webhooks/mercadopago", webhookHandler.MercadoPago)

	// Public transparency report, cached
	apiV1.Get("/transparency", middleware.CacheControl(10*time.Minute), adminHandler.Transparency)

	// Player routes
	playerRoutes := apiV1.Group("/players")
	playerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupPlayerRoutes(playerRoutes, playerHandler)

	// Finance routes (authenticated players), never cached
	financeRoutes := apiV1.Group("/finance")
	financeRoutes.Use(middleware.AuthMiddleware(cfg))
	financeRoutes.Use(middleware.NoCacheHeaders())
	setupFinanceRoutes(financeRoutes, financeHandler)

	// Match routes
	matchRoutes := apiV1.Group("/matches")
	matchRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMatchRoutes(matchRoutes, matchHandler)

	// Admin routes (admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)

	return sweepService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited against brute force
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/check-cpf", middleware.AuthRateLimiter(), handler.CheckCPF)
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupPlayerRoutes configures player routes
func setupPlayerRoutes(router fiber.Router, handler *handlers.PlayerHandler) {
	// Any authenticated player
	router.Get("/:cpf/stats", handler.Stats)
	router.Get("/:cpf/pix", handler.StaticPix)

	// Admin only
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/authorize", handler.AuthorizeCPF)
	adminRoutes.Get("/", handler.List)
	adminRoutes.Get("/:cpf", handler.Get)
	adminRoutes.Put("/:cpf", handler.Update)
	adminRoutes.Delete("/:cpf", handler.Deactivate)
}

// setupFinanceRoutes configures player billing routes
func setupFinanceRoutes(router fiber.Router, handler *handlers.FinanceHandler) {
	router.Get("/items", handler.ListItems)
	router.Post("/checkout", middleware.StrictRateLimiter(), handler.Checkout)
	router.Get("/transactions", handler.ListTransactions)
}

// setupMatchRoutes configures match routes
func setupMatchRoutes(router fiber.Router, handler *handlers.MatchHandler) {
	// Any authenticated player can browse matches
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	// Admin only
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/", handler.Create)
	adminRoutes.Put("/:id", handler.Update)
	adminRoutes.Delete("/:id", handler.Delete)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Get("/config", handler.GetConfig)
	router.Put("/config", handler.UpdateConfig)

	router.Get("/expenses", handler.ListExpenses)
	router.Post("/expenses", handler.CreateExpense)
	router.Put("/expenses/:id", handler.UpdateExpense)
	router.Delete("/expenses/:id", handler.DeleteExpense)

	router.Get("/logs", handler.ListLogs)
}
