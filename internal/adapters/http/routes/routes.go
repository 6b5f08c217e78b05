package routes

import (
	"library-loans/internal/adapters/catalog"
	"library-loans/internal/adapters/http/handlers"
	"library-loans/internal/adapters/persistence/repositories"
	"library-loans/internal/config"
	"library-loans/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	loanRepo := repositories.NewLoanRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)

	// Catalog client
	catalogClient := catalog.NewHTTPClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// Initialize services
	loanIDService := services.NewLoanIDService(reservationRepo)
	loanService := services.NewLoanService(loanRepo, loanIDService, catalogClient)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	loanHandler := handlers.NewLoanHandler(loanService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Loan routes
	loans := app.Group("/loans")
	loans.Get("/", loanHandler.List)
	loans.Post("/", loanHandler.Issue)
	loans.Get("/:id", loanHandler.Get)
	loans.Delete("/:id", loanHandler.Delete)
}
