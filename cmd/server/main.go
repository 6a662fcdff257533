package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"afps-backend/internal/adapters/http/middleware"
	"afps-backend/internal/adapters/http/routes"
	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "afps-backend/docs" // Swagger docs
)

// @title AFPS API
// @version 1.0
// @description Membership, match and billing API for the AFPS amateur football association
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email suporte@afps.com.br

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.afps.com.br
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the settings row (billing reads it and never creates it)
	// and the first admin account
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Fatalf("❌ Failed to seed database: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AFPS API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	sweepService := routes.Setup(app, db, cfg)

	// Start scheduled jobs (overdue sweep, token cleanup)
	if err := sweepService.Start(); err != nil {
		log.Fatalf("❌ Failed to start sweep service: %v", err)
	}
	defer sweepService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
