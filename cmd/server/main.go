package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/eventstock/eventstock/config"
	"github.com/eventstock/eventstock/internal/api"
	"github.com/eventstock/eventstock/internal/api/handlers"
	"github.com/eventstock/eventstock/internal/app"
	"github.com/eventstock/eventstock/internal/core/order"
	"github.com/eventstock/eventstock/internal/core/project"
	"github.com/eventstock/eventstock/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.Setup(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open backends", zap.Error(err))
	}
	defer backends.Close()

	// Initialize services
	collections := backends.Collections
	orderService := order.NewService(collections)
	projectService := project.NewService(collections)

	// Initialize handlers
	collectionHandler := handlers.NewCollectionHandler(collections)
	orderHandler := handlers.NewOrderHandler(orderService, handlers.ExportOptions{
		DefaultFormat: cfg.Export.DefaultFormat,
		Images:        backends.Images,
		Logo:          cfg.Export.Logo,
	})
	projectHandler := handlers.NewProjectHandler(projectService)

	// Setup router
	router := api.NewRouter(logger, collectionHandler, orderHandler, projectHandler)
	engine := router.Setup(cfg.Server.Mode)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
