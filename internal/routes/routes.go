package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/oceanwatch/marinewatch/internal/config"
	"github.com/oceanwatch/marinewatch/internal/handlers"
	"github.com/oceanwatch/marinewatch/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	moderationHandler *handlers.ModerationHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Public report lookup by content identifier
	api.Get("/reports/ipfs/:cid", reportHandler.GetByCID)

	// Auth is public with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Evidence upload and report submission (protected)
	api.Post("/evidence", middleware.JWTProtected(cfg), reportHandler.Upload)
	api.Post("/reports", middleware.JWTProtected(cfg), reportHandler.Create)
	api.Get("/user-reports", middleware.JWTProtected(cfg), reportHandler.ListMine)

	// Reviewer panel. Middleware goes on individual routes because the
	// /reports prefix also carries user-facing endpoints; static paths
	// register before :id so the router never shadows them.
	reviewerRequired := middleware.ReviewerRequired(db)
	api.Get("/reports", middleware.JWTProtected(cfg), reviewerRequired, reportHandler.List)
	api.Get("/reports/triage", middleware.JWTProtected(cfg), reviewerRequired, reportHandler.Triage)
	api.Get("/reports/analytics", middleware.JWTProtected(cfg), reviewerRequired, reportHandler.Analytics)
	api.Put("/reports/:id/status", middleware.JWTProtected(cfg), reviewerRequired, moderationHandler.UpdateStatus)

	api.Get("/reports/:id", middleware.JWTProtected(cfg), reportHandler.GetByID)

	// Explicit classification sweep trigger
	api.Post("/classify/sweep", middleware.JWTProtected(cfg), reviewerRequired, reportHandler.TriggerSweep)
}
