package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finsight/internal/api"
	"finsight/internal/api/handlers"
	"finsight/internal/collab"
	"finsight/internal/insights"
	"finsight/internal/workflow"
	"finsight/pkg/config"
	"finsight/pkg/logger"

	"go.uber.org/zap"
)

// @title Finsight API
// @version 1.0
// @description Bank statement analysis service: upload, AI categorization and financial insights

// @contact.name API Support
// @contact.email support@finsight.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Finsight service")

	// Initialize collaborators
	gigaClient, err := collab.NewGigaChatClient(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize GigaChat client", zap.Error(err))
	}
	defer gigaClient.Close()

	parser := collab.NewStatementParser(&cfg.Upload, appLogger)

	formatter, err := insights.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		appLogger.Fatal("Failed to initialize insight formatter", zap.Error(err))
	}

	// Initialize session manager
	factory := func() *workflow.Controller {
		return workflow.NewController(parser, gigaClient, gigaClient, formatter, appLogger)
	}
	sessions, err := workflow.NewManager(&cfg.Session, factory, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize session manager", zap.Error(err))
	}
	defer sessions.Stop()

	// Initialize handlers
	workflowHandler := handlers.NewWorkflowHandler(sessions, &cfg.Upload, appLogger)
	analyticsHandler := handlers.NewAnalyticsHandler(sessions, appLogger)

	// Setup router
	app := api.SetupRouter(workflowHandler, analyticsHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
