package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"finsight/internal/api/handlers"
)

func SetupRouter(
	workflowHandler *handlers.WorkflowHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Session-ID",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Workflow routes
	api.Post("/upload-statement", workflowHandler.UploadStatement)
	api.Post("/categorize-transactions", workflowHandler.CategorizeTransactions)
	api.Post("/generate-insights", workflowHandler.GenerateInsights)
	api.Post("/correct-transaction", workflowHandler.CorrectTransaction)

	// Session routes
	api.Get("/session-status", workflowHandler.SessionStatus)
	api.Post("/reset-session", workflowHandler.ResetSession)
	api.Get("/supported-formats", workflowHandler.SupportedFormats)
	api.Post("/sessions", workflowHandler.NewSession)
	api.Delete("/sessions/:id", workflowHandler.DeleteSession)

	// Analytics routes
	api.Get("/transactions", analyticsHandler.ListTransactions)
	analytics := api.Group("/analytics")
	analytics.Get("/summary", analyticsHandler.Summary)
	analytics.Get("/monthly", analyticsHandler.MonthlyTrends)
	analytics.Get("/daily", analyticsHandler.DailySpending)
	analytics.Get("/top-categories", analyticsHandler.TopCategories)
	analytics.Get("/top-expenses", analyticsHandler.TopExpenses)

	return app
}
