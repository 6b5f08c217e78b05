package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"library-loans/internal/adapters/http/middleware"
	"library-loans/internal/adapters/http/routes"
	"library-loans/internal/adapters/persistence/models"
	"library-loans/internal/config"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	_ "library-loans/docs" // Swagger docs
)

// @title Library Loans API
// @version 1.0
// @description Loan service of the library suite. Issues and tracks book loans; book records are owned by the catalog service.

// @host localhost:5002
// @BasePath /
// @schemes http

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

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Library Loans API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		JSONEncoder:  jsoniter.Marshal,
		JSONDecoder:  jsoniter.Unmarshal,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

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
